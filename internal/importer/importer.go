package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

// Format names the layout of an uploaded price list.
type Format string

const (
	FormatCSV Format = "csv" // comma or semicolon, sniffed
	FormatTSV Format = "tsv" // tab separated, as pasted from a spreadsheet
)

type Importer interface {
	Parse(r io.Reader) ([]ledger.ProductParams, error)
}

type Service struct {
	csvImporter Importer
	tsvImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter: NewParser(0),
		tsvImporter: NewParser('\t'),
	}
}

// Import parses r into product params. Validation against the catalog happens
// later, when the batch is applied.
func (s *Service) Import(format Format, r io.Reader) ([]ledger.ProductParams, error) {
	var importer Importer

	switch format {
	case FormatCSV, "":
		importer = s.csvImporter
	case FormatTSV:
		importer = s.tsvImporter
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ledger.ErrValidation, format)
	}

	return importer.Parse(r)
}
