package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"billex/internal/classifier"
	"billex/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		pageText string
		want     domain.PageType
	}{
		{"empty string defaults to bill detail", "", domain.PageTypeBillDetail},
		{"plain line items", "Room Charges 3 1500.00 4500.00", domain.PageTypeBillDetail},
		{"pharmacy keyword", "PHARMACY INVOICE", domain.PageTypePharmacy},
		{"drug keyword", "Drug dispensing record", domain.PageTypePharmacy},
		{"medicine keyword", "List of medicines administered", domain.PageTypePharmacy},
		{"final bill keyword", "FINAL BILL OF SUPPLY", domain.PageTypeFinalBill},
		{"grand total keyword", "Grand Total: 500", domain.PageTypeFinalBill},
		{"case insensitive", "gRaNd ToTaL", domain.PageTypeFinalBill},
		{"pharmacy wins over final bill", "Pharmacy charges included in grand total", domain.PageTypePharmacy},
		{"keyword inside a longer word", "misc hospital drugstore charges", domain.PageTypePharmacy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.pageText))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "Medicine and grand total on the same page"
	first := classifier.Classify(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, classifier.Classify(text))
	}
}
