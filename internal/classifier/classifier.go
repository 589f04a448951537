// Package classifier assigns a page type to OCR text using keyword
// heuristics. Classification is pure and total: any input, including the
// empty string, yields a valid PageType.
package classifier

import (
	"strings"

	"billex/internal/domain"
)

var pharmacyKeywords = []string{"pharmacy", "drug", "medicine"}

var finalBillKeywords = []string{"final bill", "grand total"}

// Classify returns the page type for the given page text. Matching is
// case-insensitive substring matching; the pharmacy keyword set takes
// priority over the final-bill set, and anything else is a Bill Detail page.
func Classify(pageText string) domain.PageType {
	lower := strings.ToLower(pageText)

	for _, kw := range pharmacyKeywords {
		if strings.Contains(lower, kw) {
			return domain.PageTypePharmacy
		}
	}
	for _, kw := range finalBillKeywords {
		if strings.Contains(lower, kw) {
			return domain.PageTypeFinalBill
		}
	}
	return domain.PageTypeBillDetail
}
