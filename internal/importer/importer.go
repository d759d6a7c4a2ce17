// Package importer reads item lists for strip packing from CSV, Excel and
// DXF files. Tabular sources are matched by header names, case-insensitive,
// with the CSV delimiter chosen by how many rows read as items.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/packbench/internal/model"
)

// ErrImportFailed is returned by ImportResult.Instance when the import
// produced errors or no items.
var ErrImportFailed = errors.New("import failed")

// ImportResult holds the results of an import operation. Labels[i] names
// Items[i]; an item with a quantity above one is repeated.
type ImportResult struct {
	Items    []model.Item
	Labels   []string
	Errors   []string
	Warnings []string
}

// Instance builds a strip packing instance from the imported items.
func (r ImportResult) Instance(id string, stripWidth int) (*model.Instance, error) {
	if len(r.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrImportFailed, strings.Join(r.Errors, "; "))
	}
	if len(r.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrImportFailed)
	}
	in, err := model.NewInstance(id, stripWidth, r.Items)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

func (r *ImportResult) add(label string, item model.Item, qty int) {
	for i := 0; i < qty; i++ {
		r.Items = append(r.Items, item)
		r.Labels = append(r.Labels, label)
	}
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Quantity int
}

// positionalMapping is used for files without a header: width, height and
// an optional quantity.
var positionalMapping = ColumnMapping{Label: -1, Width: 0, Height: 1, Quantity: 2}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "id", "description", "desc", "piece", "item"},
	"width":    {"width", "w", "x", "size x"},
	"height":   {"height", "h", "y", "size y", "length", "len"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces", "demand"},
}

// delimiters are the CSV delimiters tried, in order of preference.
var delimiters = []rune{',', ';', '\t', '|'}

// detectDelimiter splits data with the delimiter under which the most rows
// read as items. Ties keep the earlier delimiter, so a file holding no valid
// row is read as comma separated.
func detectDelimiter(data []byte) (rune, [][]string, error) {
	var (
		best     rune
		bestRows [][]string
		firstErr error
	)
	bestScore := -1
	for _, delim := range delimiters {
		rows, err := readCSV(bytes.NewReader(data), delim)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if score := itemRows(rows); score > bestScore {
			best, bestRows, bestScore = delim, rows, score
		}
	}
	if bestRows == nil {
		return 0, nil, firstErr
	}
	return best, bestRows, nil
}

// itemRows counts the rows with a valid width and height under the column
// mapping the first row selects.
func itemRows(rows [][]string) int {
	mapping, hasHeader := DetectColumns(rows[0])
	if hasHeader && (mapping.Width < 0 || mapping.Height < 0) {
		return 0
	}
	n := 0
	for _, row := range rows {
		if _, _, err := parseDimension(getCell(row, mapping.Width), "width", ""); err != nil {
			continue
		}
		if _, _, err := parseDimension(getCell(row, mapping.Height), "height", ""); err != nil {
			continue
		}
		n++
	}
	return n
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Width: -1, Height: -1, Quantity: -1}
	roles := map[string]*int{
		"label":    &mapping.Label,
		"width":    &mapping.Width,
		"height":   &mapping.Height,
		"quantity": &mapping.Quantity,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if idx := roles[role]; *idx == -1 {
						*idx = i
					}
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDimension parses a positive integer size. Fractional sizes, with a
// decimal point or a decimal comma, are rounded up so the item still covers
// its drawing; the second return value is a warning in that case.
func parseDimension(s, name, rowLabel string) (int, string, error) {
	if s == "" {
		return 0, "", fmt.Errorf("%s: Missing %s value", rowLabel, name)
	}
	if v, err := strconv.Atoi(s); err == nil {
		if v <= 0 {
			return 0, "", fmt.Errorf("%s: %s must be positive", rowLabel, name)
		}
		return v, "", nil
	}
	f, err := parseNumber(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, "", fmt.Errorf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	if f <= 0 || f > math.MaxInt32 {
		return 0, "", fmt.Errorf("%s: %s must be positive", rowLabel, name)
	}
	v := int(math.Ceil(f))
	return v, fmt.Sprintf("%s: %s %s rounded up to %d", rowLabel, name, s, v), nil
}

// parseNumber parses a decimal number written with a point or a comma.
func parseNumber(s string) (float64, error) {
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// parseRow extracts an item and its quantity from a row using the given
// column mapping. Returns the label, item, quantity and any warnings.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, itemCount int) (string, model.Item, int, []string, error) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Item %d", itemCount+1)
	}

	var warnings []string
	width, warning, err := parseDimension(getCell(row, mapping.Width), "width", rowLabel)
	if err != nil {
		return "", model.Item{}, 0, nil, err
	}
	if warning != "" {
		warnings = append(warnings, warning)
	}
	height, warning, err := parseDimension(getCell(row, mapping.Height), "height", rowLabel)
	if err != nil {
		return "", model.Item{}, 0, nil, err
	}
	if warning != "" {
		warnings = append(warnings, warning)
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		qty, err = strconv.Atoi(qtyStr)
		if err != nil {
			return "", model.Item{}, 0, nil, fmt.Errorf("%s: Invalid quantity '%s'", rowLabel, qtyStr)
		}
		if qty <= 0 {
			return "", model.Item{}, 0, nil, fmt.Errorf("%s: quantity must be positive", rowLabel)
		}
	}

	return label, model.Item{Width: width, Height: height}, qty, warnings, nil
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports items from a CSV file.
// It detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}
	return importCSVData(data)
}

// ImportCSVFromReader imports items from a CSV reader with a specific
// delimiter. A zero delimiter is detected from the content.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	if delimiter == 0 {
		data, err := io.ReadAll(reader)
		if err != nil {
			return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
		}
		return importCSVData(data)
	}
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{err.Error()}}
	}
	return importFromRows(records, "Line", nil)
}

func importCSVData(data []byte) ImportResult {
	delimiter, records, err := detectDelimiter(data)
	if err != nil {
		return ImportResult{Errors: []string{err.Error()}}
	}
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}
	return importFromRows(records, "Line", warnings)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Cannot read CSV: %v", err)
	}
	if len(records) == 0 {
		return nil, errors.New("File is empty")
	}
	return records, nil
}

// ImportExcel imports items from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportFile dispatches on the file extension: .csv, .txt, .xlsx or .dxf.
func ImportFile(path string) ImportResult {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type '%s'", ext)}}
	}
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into items.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if _, err := parseNumber(getCell(rows[0], 0)); err != nil {
		// An unrecognized header: skip it but keep the positional mapping
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		label, item, qty, warnings, err := parseRow(row, mapping, rowLabel, len(result.Items))
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.add(label, item, qty)
	}

	return result
}
