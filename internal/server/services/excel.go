package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Required spreadsheet columns. Header matching ignores case, spaces and
// underscores, so "Invoice Number" and "invoice_number" both work.
var requiredColumns = []string{"date", "vendor", "amount"}

var cellDateLayouts = []string{
	"2006-01-02",
	"01-02-06", // excelize default date display format
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
}

// ParseExcelRows reads the first sheet of an .xlsx workbook into import
// rows. The first row must be a header; empty rows are skipped. A malformed
// cell fails the whole file, keeping the import all-or-nothing end to end.
func ParseExcelRows(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("workbook has no header row")
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[normalizeHeader(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var out []ImportRow
	for i, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		cell := func(name string) string {
			j, ok := idx[name]
			if !ok || j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}

		date, err := parseCellDate(cell("date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		amount, err := parseCellAmount(cell("amount"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		out = append(out, ImportRow{
			InvoiceNumber:   cell("invoicenumber"),
			Vendor:          cell("vendor"),
			Date:            date,
			Amount:          amount,
			Category:        cell("category"),
			Notes:           cell("notes"),
			TransactionType: cell("transactiontype"),
		})
	}
	return out, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	return strings.ReplaceAll(h, "_", "")
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseCellDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range cellDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", v)
}

func parseCellAmount(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Decimal{}, errors.New("empty amount")
	}
	v = strings.ReplaceAll(strings.TrimPrefix(v, "$"), ",", "")
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount: %q", v)
	}
	return d, nil
}
