package medinfo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
)

// Reference table column headers.
const (
	colDisease     = "Disease"
	colTreatment   = "Treatment"
	colComposition = "Medicinal Composition"
	colAvoid       = "Ingredients to Avoid"
	colDiet        = "Recommended Diet"
	colPrecautions = "Precautionary Measures"
)

// LoadTable reads the medical reference CSV. The source file is exported
// with ISO-8859-1 encoding, so bytes are decoded through that charmap.
// Only the Disease column is required; missing guidance columns fall back
// to the NotAvailable sentinel per row.
func LoadTable(path string, logger *observability.Logger) ([]Record, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	logger = logger.WithComponent("medinfo")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read reference header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	diseaseIdx, ok := cols[colDisease]
	if !ok {
		return nil, fmt.Errorf("reference table missing %q column", colDisease)
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return NotAvailable
		}
		return orNotAvailable(row[idx])
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row degrades to a skip, not a load failure.
			logger.Warn().Err(err).Msg("Skipping malformed reference row")
			continue
		}
		if diseaseIdx >= len(row) || strings.TrimSpace(row[diseaseIdx]) == "" {
			continue
		}

		records = append(records, Record{
			Disease: strings.TrimSpace(row[diseaseIdx]),
			Info: Info{
				Treatment:             field(row, colTreatment),
				MedicinalComposition:  field(row, colComposition),
				IngredientsToAvoid:    field(row, colAvoid),
				RecommendedDiet:       field(row, colDiet),
				PrecautionaryMeasures: field(row, colPrecautions),
			},
		})
	}

	logger.Info().Int("rows", len(records)).Str("path", path).Msg("Disease reference table loaded")
	return records, nil
}
