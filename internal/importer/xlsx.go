package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// Columns are matched against the header row case-insensitively; order does
// not matter. imageUrl and countInStock are optional.
var requiredColumns = []string{"name", "description", "price", "category"}

// SkippedRow records why a spreadsheet row was not imported. Row is the
// 1-based sheet row number.
type SkippedRow struct {
	Row    int
	Reason string
}

type Result struct {
	Sheet   string
	Items   []model.Item
	Skipped []SkippedRow
}

// ReadItems parses the first sheet of an XLSX workbook into catalog items.
// Rows that fail validation or repeat an earlier name+category pair are
// skipped and reported.
func ReadItems(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &Result{Sheet: sheet}
	seen := make(map[string]bool)

	for i, row := range rows[1:] {
		rowNum := i + 2
		skip := func(reason string) {
			result.Skipped = append(result.Skipped, SkippedRow{Row: rowNum, Reason: reason})
		}

		item := model.Item{
			Name:        cell(row, "name"),
			Description: cell(row, "description"),
			Category:    cell(row, "category"),
			ImageURL:    cell(row, "imageUrl"),
		}
		if item.Name == "" && item.Category == "" && cell(row, "price") == "" {
			continue
		}
		if item.Name == "" || item.Description == "" || item.Category == "" {
			skip("name, description and category are required")
			continue
		}

		price, err := strconv.ParseFloat(cell(row, "price"), 64)
		if err != nil || price < 0 {
			skip(fmt.Sprintf("invalid price %q", cell(row, "price")))
			continue
		}
		item.Price = price

		if raw := cell(row, "countInStock"); raw != "" {
			stock, err := strconv.Atoi(raw)
			if err != nil || stock < 0 {
				skip(fmt.Sprintf("invalid countInStock %q", raw))
				continue
			}
			item.CountInStock = stock
		}

		key := item.Name + "|" + item.Category
		if seen[key] {
			skip("duplicate name and category")
			continue
		}
		seen[key] = true

		result.Items = append(result.Items, item)
	}

	return result, nil
}
