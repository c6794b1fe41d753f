package ingest

import (
	"strings"

	"invoice-pipeline/internal/server/models"
)

// ClassifyTransaction maps an upload-time metadata value to a transaction
// type. The value is trimmed and upper-cased; only exact INCOME or EXPENSE
// are accepted, anything else (misspellings included) is unclassified.
func ClassifyTransaction(raw string) models.TransactionType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(models.TransactionIncome):
		return models.TransactionIncome
	case string(models.TransactionExpense):
		return models.TransactionExpense
	default:
		return ""
	}
}
