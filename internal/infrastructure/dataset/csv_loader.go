package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dermalens/backend/internal/domain"
)

// Column headers of the cosmetics table
const (
	colName        = "Name"
	colBrand       = "Brand"
	colLabel       = "Label"
	colIngredients = "Ingredients"
	colPrice       = "Price"
	colRank        = "Rank"
)

// requiredColumns are validated at load time; the skin-type columns are added from domain.AllSkinTypes
var requiredColumns = []string{colName, colBrand, colLabel, colIngredients, colPrice, colRank}

// CSVSource loads the product table from a CSV file with a header row
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV source for the given file
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load reads and parses the whole file
func (s *CSVSource) Load(ctx context.Context) (*domain.Catalog, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	products, err := ParseCSV(ctx, file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", s.path)
	}

	version, err := fingerprint(products)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", s.path).Int("products", len(products)).Str("version", version).Msg("catalog loaded from csv")
	return domain.NewCatalog(products, version), nil
}

// ParseCSV reads products from r. Columns are located by header name in any
// order and letter case; extra columns are ignored. Blank or non-numeric price
// and rank cells load as absent, and any skin-type cell other than 1 loads as
// not suitable.
func ParseCSV(ctx context.Context, r io.Reader) ([]domain.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.Wrap(domain.ErrMalformedDataset, "empty file")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	lineNum := 1 // header

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, errors.WithStack(readErr)
		}
		lineNum++

		if lineNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WithStack(err)
			}
		}

		if isBlankRecord(record) {
			continue
		}

		products = append(products, parseRecord(record, idx))
	}

	return products, nil
}

// columnIndex maps column names to record positions
type columnIndex struct {
	fields    map[string]int
	skinTypes map[domain.SkinType]int
}

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		positions[strings.ToLower(h)] = i
	}

	idx := columnIndex{
		fields:    make(map[string]int, len(requiredColumns)),
		skinTypes: make(map[domain.SkinType]int, len(domain.AllSkinTypes())),
	}

	var missing []string
	for _, name := range requiredColumns {
		pos, ok := positions[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx.fields[name] = pos
	}
	for _, t := range domain.AllSkinTypes() {
		pos, ok := positions[strings.ToLower(t.String())]
		if !ok {
			missing = append(missing, t.String())
			continue
		}
		idx.skinTypes[t] = pos
	}

	if len(missing) > 0 {
		return columnIndex{}, errors.Wrapf(domain.ErrMalformedDataset, "missing columns %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRecord(record []string, idx columnIndex) domain.Product {
	cell := func(pos int) string {
		if pos < len(record) {
			return strings.TrimSpace(record[pos])
		}
		return ""
	}

	p := domain.Product{
		Name:        cell(idx.fields[colName]),
		Brand:       cell(idx.fields[colBrand]),
		Label:       cell(idx.fields[colLabel]),
		Ingredients: cell(idx.fields[colIngredients]),
		Price:       parseOptionalFloat(cell(idx.fields[colPrice])),
		Rank:        parseOptionalFloat(cell(idx.fields[colRank])),
	}
	for t, pos := range idx.skinTypes {
		if parseFlag(cell(pos)) {
			p.SkinTypes = p.SkinTypes.With(t)
		}
	}
	return p
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
