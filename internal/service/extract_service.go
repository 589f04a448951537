package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	retry "github.com/avast/retry-go/v4"

	"billex/internal/classifier"
	"billex/internal/domain"
	"billex/internal/llm"
	"billex/internal/port"
)

// DocumentSource identifies the document for one extraction run: a remote
// reference (http(s) or s3 URL) or raw image bytes already received by the
// caller. Raw takes precedence when both are set.
type DocumentSource struct {
	Reference string
	Raw       []byte
}

// LineItemExtractor extracts cleaned line items plus token usage from one
// page of text. Implemented by extractor.Extractor.
type LineItemExtractor interface {
	Extract(ctx context.Context, pageText string, pageNo int) ([]domain.BillItem, domain.TokenUsage, error)
}

// ExtractService defines the bill extraction pipeline contract.
type ExtractService interface {
	Run(ctx context.Context, source DocumentSource) (*domain.ExtractResult, error)
}

type extractService struct {
	fetcher    port.DocumentFetcher
	pages      port.PageTextSource
	extractor  LineItemExtractor
	maxRetries int
}

// NewExtractService creates a new ExtractService implementation. maxRetries
// is the number of additional model-call attempts per page after the first;
// zero runs each call exactly once, matching the extractor's own no-retry
// contract.
func NewExtractService(
	fetcher port.DocumentFetcher,
	pages port.PageTextSource,
	lineItems LineItemExtractor,
	maxRetries int,
) ExtractService {
	return &extractService{
		fetcher:    fetcher,
		pages:      pages,
		extractor:  lineItems,
		maxRetries: maxRetries,
	}
}

// Run drives the full pipeline: resolve the source, OCR each page, extract
// and classify per page, and assemble the aggregated result. Pages are
// processed strictly in order; any fatal failure aborts the whole run with
// no partial result.
func (s *extractService) Run(ctx context.Context, source DocumentSource) (*domain.ExtractResult, error) {
	raw := source.Raw
	if len(raw) == 0 {
		if source.Reference == "" {
			return nil, fmt.Errorf("%w: empty document source", domain.ErrFetch)
		}
		fetched, err := s.fetcher.Fetch(ctx, source.Reference)
		if err != nil {
			return nil, err
		}
		raw = fetched
	}

	// Current scope: one image is exactly one page.
	text, err := s.pages.PageText(ctx, raw)
	if err != nil {
		return nil, err
	}
	pages := []string{text}

	var usageTotal domain.TokenUsage
	pagewise := make([]domain.PageLineItems, 0, len(pages))

	for idx, pageText := range pages {
		pageNo := idx + 1

		items, usage, err := s.extractPage(ctx, pageText, pageNo)
		if err != nil {
			return nil, err
		}
		usageTotal.Add(usage)

		pagewise = append(pagewise, domain.PageLineItems{
			PageNo:    strconv.Itoa(pageNo),
			PageType:  classifier.Classify(pageText),
			BillItems: items,
		})
	}

	totalItems := 0
	for _, p := range pagewise {
		totalItems += len(p.BillItems)
	}

	return &domain.ExtractResult{
		IsSuccess:  true,
		TokenUsage: usageTotal,
		Data: domain.ExtractData{
			PagewiseLineItems: pagewise,
			TotalItemCount:    totalItems,
		},
	}, nil
}

// extractPage applies the configured retry policy around the model-call
// boundary. The returned usage is that of the successful attempt only.
func (s *extractService) extractPage(ctx context.Context, pageText string, pageNo int) ([]domain.BillItem, domain.TokenUsage, error) {
	if s.maxRetries <= 0 {
		return s.extractor.Extract(ctx, pageText, pageNo)
	}

	var items []domain.BillItem
	var usage domain.TokenUsage

	err := retry.Do(
		func() error {
			var err error
			items, usage, err = s.extractor.Extract(ctx, pageText, pageNo)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(s.maxRetries)+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, cfg *retry.Config) time.Duration {
			// Providers report 429s with a Retry-After hint; honor it.
			var rateLimited *llm.RateLimitError
			if errors.As(err, &rateLimited) {
				return rateLimited.RetryAfter
			}
			return retry.BackOffDelay(n, err, cfg)
		}),
	)
	if err != nil {
		return nil, domain.TokenUsage{}, err
	}
	return items, usage, nil
}
