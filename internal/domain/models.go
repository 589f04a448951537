package domain

// BillItem is a single extracted line item from a bill page.
type BillItem struct {
	ItemName     string  `json:"item_name"`
	ItemQuantity float64 `json:"item_quantity"`
	ItemRate     float64 `json:"item_rate"`
	ItemAmount   float64 `json:"item_amount"`
}

// PageLineItems groups the line items extracted from one page.
// PageNo is the 1-based position of the page in the document, as a string.
type PageLineItems struct {
	PageNo    string     `json:"page_no"`
	PageType  PageType   `json:"page_type"`
	BillItems []BillItem `json:"bill_items"`
}

// TokenUsage holds LLM token counters for one call, or the field-wise sum
// across all calls of a run.
type TokenUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another usage record field-wise.
func (u *TokenUsage) Add(other TokenUsage) {
	u.TotalTokens += other.TotalTokens
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// ExtractData is the payload section of an extraction response.
type ExtractData struct {
	PagewiseLineItems []PageLineItems `json:"pagewise_line_items"`
	TotalItemCount    int             `json:"total_item_count"`
}

// ExtractResult is the full result of one extraction run.
type ExtractResult struct {
	IsSuccess  bool        `json:"is_success"`
	TokenUsage TokenUsage  `json:"token_usage"`
	Data       ExtractData `json:"data"`
}
