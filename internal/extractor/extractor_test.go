package extractor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billex/internal/domain"
	"billex/internal/extractor"
	"billex/internal/port"
)

// fakeCompleter returns a canned completion or error.
type fakeCompleter struct {
	completion *port.Completion
	err        error
	lastPrompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (*port.Completion, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

func newExtractor(text string, usage domain.TokenUsage) (*extractor.Extractor, *fakeCompleter) {
	fake := &fakeCompleter{completion: &port.Completion{Text: text, Usage: usage}}
	return extractor.New(fake), fake
}

func TestExtract_CleanJSON(t *testing.T) {
	usage := domain.TokenUsage{TotalTokens: 70, InputTokens: 50, OutputTokens: 20}
	e, _ := newExtractor(`{"items":[{"item_name":"Paracetamol","item_quantity":2,"item_rate":5,"item_amount":10}]}`, usage)

	items, gotUsage, err := e.Extract(context.Background(), "some page text", 1)

	require.NoError(t, err)
	assert.Equal(t, usage, gotUsage)
	require.Len(t, items, 1)
	assert.Equal(t, domain.BillItem{
		ItemName:     "Paracetamol",
		ItemQuantity: 2,
		ItemRate:     5,
		ItemAmount:   10,
	}, items[0])
}

func TestExtract_PromptEmbedsPageTextAndNumber(t *testing.T) {
	e, fake := newExtractor(`{"items":[]}`, domain.TokenUsage{})

	_, _, err := e.Extract(context.Background(), "Paracetamol 500mg", 3)

	require.NoError(t, err)
	assert.Contains(t, fake.lastPrompt, "Paracetamol 500mg")
	assert.Contains(t, fake.lastPrompt, "PAGE NUMBER: 3")
}

func TestExtract_MalformedOutputDegradesToZeroItems(t *testing.T) {
	usage := domain.TokenUsage{TotalTokens: 12, InputTokens: 10, OutputTokens: 2}
	e, _ := newExtractor("not json at all", usage)

	items, gotUsage, err := e.Extract(context.Background(), "text", 1)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, usage, gotUsage)
}

func TestExtract_RecoversJSONEmbeddedInProse(t *testing.T) {
	text := `Here is the result: {"items":[{"item_name":"Paracetamol","item_quantity":2,"item_rate":5,"item_amount":10}]} Thanks.`
	e, _ := newExtractor(text, domain.TokenUsage{})

	items, _, err := e.Extract(context.Background(), "text", 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Paracetamol", items[0].ItemName)
	assert.Equal(t, 2.0, items[0].ItemQuantity)
	assert.Equal(t, 5.0, items[0].ItemRate)
	assert.Equal(t, 10.0, items[0].ItemAmount)
}

func TestExtract_RecoversJSONInCodeFence(t *testing.T) {
	text := "```json\n{\"items\":[{\"item_name\":\"CBC Test\",\"item_quantity\":1,\"item_rate\":300,\"item_amount\":300}]}\n```"
	e, _ := newExtractor(text, domain.TokenUsage{})

	items, _, err := e.Extract(context.Background(), "text", 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CBC Test", items[0].ItemName)
}

func TestExtract_DropsOnlyTheMalformedItem(t *testing.T) {
	text := `{"items":[{"item_name":"A","item_amount":"oops"},{"item_name":"B","item_amount":5,"item_rate":1,"item_quantity":1}]}`
	e, _ := newExtractor(text, domain.TokenUsage{})

	items, _, err := e.Extract(context.Background(), "text", 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].ItemName)
}

func TestExtract_NonObjectItemIsDropped(t *testing.T) {
	text := `{"items":["just a string",{"item_name":"Kept","item_amount":1,"item_rate":1,"item_quantity":1}]}`
	e, _ := newExtractor(text, domain.TokenUsage{})

	items, _, err := e.Extract(context.Background(), "text", 1)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Kept", items[0].ItemName)
}

func TestExtract_FieldCoercion(t *testing.T) {
	tests := []struct {
		name string
		json string
		want domain.BillItem
	}{
		{
			"missing fields default to zero values",
			`{"items":[{}]}`,
			domain.BillItem{},
		},
		{
			"null numerics become zero",
			`{"items":[{"item_name":"X","item_quantity":null,"item_rate":null,"item_amount":null}]}`,
			domain.BillItem{ItemName: "X"},
		},
		{
			"name is trimmed",
			`{"items":[{"item_name":"  Surgical Gloves  ","item_quantity":1,"item_rate":2,"item_amount":2}]}`,
			domain.BillItem{ItemName: "Surgical Gloves", ItemQuantity: 1, ItemRate: 2, ItemAmount: 2},
		},
		{
			"numeric strings are accepted",
			`{"items":[{"item_name":"Y","item_quantity":"2","item_rate":"5.5","item_amount":"11"}]}`,
			domain.BillItem{ItemName: "Y", ItemQuantity: 2, ItemRate: 5.5, ItemAmount: 11},
		},
		{
			"zero amount items are preserved",
			`{"items":[{"item_name":"Complimentary Kit","item_quantity":1,"item_rate":0,"item_amount":0}]}`,
			domain.BillItem{ItemName: "Complimentary Kit", ItemQuantity: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newExtractor(tt.json, domain.TokenUsage{})

			items, _, err := e.Extract(context.Background(), "text", 1)

			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0])
		})
	}
}

func TestExtract_OrderFollowsModelOutput(t *testing.T) {
	text := `{"items":[
		{"item_name":"C","item_quantity":1,"item_rate":1,"item_amount":1},
		{"item_name":"A","item_quantity":1,"item_rate":1,"item_amount":1},
		{"item_name":"B","item_quantity":1,"item_rate":1,"item_amount":1}]}`
	e, _ := newExtractor(text, domain.TokenUsage{})

	items, _, err := e.Extract(context.Background(), "text", 1)

	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.ItemName)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)
}

func TestExtract_CompleterFailureIsExtractionError(t *testing.T) {
	boundary := errors.New("connection refused")
	e := extractor.New(&fakeCompleter{err: boundary})

	_, _, err := e.Extract(context.Background(), "text", 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
	assert.True(t, errors.Is(err, boundary))
}

func TestBuildLineItemPrompt_IsDeterministic(t *testing.T) {
	a := extractor.BuildLineItemPrompt("page text", 2)
	b := extractor.BuildLineItemPrompt("page text", 2)
	assert.Equal(t, a, b)
	assert.True(t, strings.Contains(a, `"items"`))
}
