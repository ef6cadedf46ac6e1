package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

// Parser reads a product price list. Comma selects the delimiter; zero means
// sniff it from the first non-empty line.
type Parser struct {
	Comma rune
}

func NewParser(comma rune) *Parser {
	return &Parser{Comma: comma}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.ProductParams, error) {
	utf8r, err := toUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	comma := p.Comma
	if comma == 0 {
		comma = sniffComma(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := detectHeader(rows)
	if !ok {
		return nil, fmt.Errorf("%w: no header with name, category, price and stock columns", ledger.ErrValidation)
	}

	return parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

// parseRows converts data rows. Row numbers in errors count CSV records from 1.
func parseRows(cols columns, rows [][]string, headerRowNum int) ([]ledger.ProductParams, error) {
	var out []ledger.ProductParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		if blank(row) {
			continue
		}

		params, err := parseRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		out = append(out, params)
	}

	return out, nil
}

func parseRow(cols columns, row []string) (ledger.ProductParams, error) {
	price, err := parsePrice(cols.value(row, fieldPrice))
	if err != nil {
		return ledger.ProductParams{}, fmt.Errorf("%w: %v", ledger.ErrValidation, err)
	}

	stock, err := parseCount(cols.value(row, fieldStock))
	if err != nil {
		return ledger.ProductParams{}, fmt.Errorf("%w: stock: %v", ledger.ErrValidation, err)
	}

	params := ledger.ProductParams{
		Name:        cols.value(row, fieldName),
		Category:    cols.value(row, fieldCategory),
		Price:       price,
		Stock:       stock,
		Barcode:     cols.value(row, fieldBarcode),
		Description: cols.value(row, fieldDescription),
	}

	if s := cols.value(row, fieldMinStock); s != "" {
		minStock, err := parseCount(s)
		if err != nil {
			return ledger.ProductParams{}, fmt.Errorf("%w: min stock: %v", ledger.ErrValidation, err)
		}

		params.MinStock = &minStock
	}

	return params, nil
}

// parseCount accepts whole numbers, including spreadsheet renderings such as
// "12,0" or "12.00".
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	d, err := parsePrice(s)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}

	return int(d.IntPart()), nil
}

const sniffLines = 20

// sniffComma picks the most frequent of ',', ';' and tab over the first
// non-empty lines. Exports often open with a title line, so one line is not
// enough.
func sniffComma(data []byte) rune {
	candidates := []rune{',', ';', '\t'}
	counts := make([]int, len(candidates))
	seen := 0

	for _, line := range strings.SplitAfter(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		for i, c := range candidates {
			counts[i] += strings.Count(line, string(c))
		}

		if seen++; seen == sniffLines {
			break
		}
	}

	best := 0
	for i := range candidates {
		if counts[i] > counts[best] {
			best = i
		}
	}

	return candidates[best]
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
