package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ErrInvalidWorkbook is returned for uploads that are not readable .xlsx files.
var ErrInvalidWorkbook = errors.New("invalid excel file")

// Spreadsheet columns, in order.
const (
	colName = iota
	colPrice
	colCurrency
	colDescription
	colImageURL
)

// SkippedRow explains why a spreadsheet row was not imported.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Imported int          `json:"imported"`
	Skipped  []SkippedRow `json:"skipped"`
}

// Import reads products from the first sheet of an .xlsx workbook. The first
// row is a header. Rows that fail validation are reported and skipped.
func (s *ProductService) Import(ctx context.Context, actorID string, r io.Reader) (*ImportReport, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrInvalidWorkbook
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrInvalidWorkbook
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	report := &ImportReport{Skipped: []SkippedRow{}}
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rowNum := i + 1

		in, reason := productFromRow(row)
		if reason != "" {
			report.Skipped = append(report.Skipped, SkippedRow{Row: rowNum, Reason: reason})
			continue
		}
		product, err := buildProduct(in)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedRow{Row: rowNum, Reason: err.Error()})
			continue
		}
		if err := s.products.Create(ctx, product); err != nil {
			return report, fmt.Errorf("import row %d: %w", rowNum, err)
		}
		report.Imported++
	}

	if report.Imported > 0 {
		s.cache.Bump(ctx, productCacheNamespace)
	}
	s.logger.Info("catalog import finished",
		zap.String("actor_id", actorID),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", len(report.Skipped)))
	return report, nil
}

func productFromRow(row []string) (ProductInput, string) {
	if len(row) <= colPrice {
		return ProductInput{}, "name and price are required"
	}
	price, err := decimal.NewFromString(strings.TrimSpace(cell(row, colPrice)))
	if err != nil {
		return ProductInput{}, fmt.Sprintf("invalid price %q", cell(row, colPrice))
	}
	return ProductInput{
		Name:        cell(row, colName),
		Price:       price,
		Currency:    cell(row, colCurrency),
		Description: cell(row, colDescription),
		ImageURL:    cell(row, colImageURL),
	}, ""
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
