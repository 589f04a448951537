package extractor

import "fmt"

// BuildLineItemPrompt returns the extraction prompt for one bill page. The
// page text is embedded verbatim; the instruction set is fixed so that
// temperature-0 decoding stays reproducible run to run.
func BuildLineItemPrompt(pageText string, pageNo int) string {
	return fmt.Sprintf(`You are an expert invoice parser.

TASK:
From the following bill page text, extract only the actual line items (products/services).
Ignore headers, subtotals, discounts, taxes, totals, round-off, and other non-line items.

For each line item, return:
- item_name: string (exact as in text, or as close as OCR allows)
- item_quantity: float
- item_rate: float
- item_amount: float (net amount for that line)

Return JSON in the format:
{
  "items": [
    {
      "item_name": "string",
      "item_quantity": 0.0,
      "item_rate": 0.0,
      "item_amount": 0.0
    }
  ]
}

PAGE NUMBER: %d
PAGE TEXT:
"""%s"""`, pageNo, pageText)
}
