// Package extractor turns one page of OCR text into a cleaned list of bill
// line items by prompting a completion model and defensively parsing its
// JSON output. Malformed model output never fails a page: unparseable JSON
// degrades to zero items, and a single bad item is dropped without touching
// the rest.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"billex/internal/domain"
	"billex/internal/port"
)

// Extractor extracts line items from page text via a Completer.
type Extractor struct {
	completer port.Completer
}

// New creates an Extractor on top of the given completion boundary.
func New(completer port.Completer) *Extractor {
	return &Extractor{completer: completer}
}

// Extract prompts the model with the page text and returns the cleaned item
// list (model output order preserved) plus the call's token usage. The only
// hard failure is the model call itself, reported as domain.ErrExtraction;
// the Extractor never retries, that policy belongs to the caller.
func (e *Extractor) Extract(ctx context.Context, pageText string, pageNo int) ([]domain.BillItem, domain.TokenUsage, error) {
	prompt := BuildLineItemPrompt(pageText, pageNo)

	completion, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, domain.TokenUsage{}, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	return parseItems(completion.Text), completion.Usage, nil
}

// rawPayload is the untyped shape of the model's response. Elements of Items
// stay raw so one malformed element cannot fail decoding of the others.
type rawPayload struct {
	Items []json.RawMessage `json:"items"`
}

// parseItems parses the completion text into bill items. Strict JSON parsing
// is tried first; on failure the substring between the first '{' and the
// last '}' is re-parsed, which recovers JSON wrapped in prose or code
// fences. If that also fails the page simply has no items.
func parseItems(text string) []domain.BillItem {
	var payload rawPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start == -1 || end == -1 || end <= start {
			return []domain.BillItem{}
		}
		payload = rawPayload{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
			return []domain.BillItem{}
		}
	}

	items := make([]domain.BillItem, 0, len(payload.Items))
	for _, raw := range payload.Items {
		item, ok := coerceItem(raw)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// coerceItem validates and coerces one raw element into a BillItem. A
// non-object element or a numeric field that resists coercion drops just
// that element.
func coerceItem(raw json.RawMessage) (domain.BillItem, bool) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.BillItem{}, false
	}

	item := domain.BillItem{
		ItemName: coerceName(fields["item_name"]),
	}

	var ok bool
	if item.ItemQuantity, ok = coerceFloat(fields["item_quantity"]); !ok {
		return domain.BillItem{}, false
	}
	if item.ItemRate, ok = coerceFloat(fields["item_rate"]); !ok {
		return domain.BillItem{}, false
	}
	if item.ItemAmount, ok = coerceFloat(fields["item_amount"]); !ok {
		return domain.BillItem{}, false
	}
	return item, true
}

func coerceName(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// coerceFloat maps null/absent/empty to 0.0 and accepts numeric strings.
// Anything else (junk text, objects, arrays) reports failure.
func coerceFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
