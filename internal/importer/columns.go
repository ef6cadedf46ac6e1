package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type field int

const (
	fieldName field = iota
	fieldCategory
	fieldPrice
	fieldStock
	fieldMinStock
	fieldBarcode
	fieldDescription
)

// Header aliases after normalization: lower case, no accents, no spaces or
// punctuation.
var aliases = map[string]field{
	"nombre":         fieldName,
	"producto":       fieldName,
	"name":           fieldName,
	"product":        fieldName,
	"categoria":      fieldCategory,
	"rubro":          fieldCategory,
	"category":       fieldCategory,
	"precio":         fieldPrice,
	"preciounitario": fieldPrice,
	"preciodeventa":  fieldPrice,
	"price":          fieldPrice,
	"stock":          fieldStock,
	"cantidad":       fieldStock,
	"existencia":     fieldStock,
	"quantity":       fieldStock,
	"stockminimo":    fieldMinStock,
	"minimo":         fieldMinStock,
	"minstock":       fieldMinStock,
	"codigo":         fieldBarcode,
	"codigodebarras": fieldBarcode,
	"ean":            fieldBarcode,
	"barcode":        fieldBarcode,
	"descripcion":    fieldDescription,
	"detalle":        fieldDescription,
	"description":    fieldDescription,
}

var requiredFields = []field{fieldName, fieldCategory, fieldPrice, fieldStock}

type columns map[field]int

// detectHeader scans rows for the first one that names every required field.
// It returns the column map and the header's row index, or ok=false.
func detectHeader(rows [][]string) (columns, int, bool) {
	for rowIdx, row := range rows {
		cols := make(columns)

		for i, cell := range row {
			if f, ok := aliases[normalizeHeader(cell)]; ok {
				if _, seen := cols[f]; !seen {
					cols[f] = i
				}
			}
		}

		if cols.complete() {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func (c columns) complete() bool {
	for _, f := range requiredFields {
		if _, ok := c[f]; !ok {
			return false
		}
	}

	return true
}

// value returns the trimmed cell for f, or "" when the column is absent or
// the row is short.
func (c columns) value(row []string, f field) string {
	idx, ok := c[f]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func normalizeHeader(s string) string {
	// A chain keeps state between calls, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		folded = strings.ToLower(s)
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return -1
	}, folded)
}
