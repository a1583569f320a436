// Package medinfo resolves supplementary medical guidance for predicted
// disease labels from a reference table.
package medinfo

import (
	"strings"
)

// NotAvailable is the sentinel value for guidance fields with no data.
const NotAvailable = "Not available"

// Info holds the guidance columns for one disease.
type Info struct {
	Treatment             string `json:"treatment"`
	MedicinalComposition  string `json:"medicinal_composition"`
	IngredientsToAvoid    string `json:"ingredients_to_avoid"`
	RecommendedDiet       string `json:"recommended_diet"`
	PrecautionaryMeasures string `json:"precautionary_measures"`
}

// EmptyInfo returns an Info with every field set to the NotAvailable
// sentinel. Lookups that find nothing return this instead of an error so
// the response stays well-formed.
func EmptyInfo() Info {
	return Info{
		Treatment:             NotAvailable,
		MedicinalComposition:  NotAvailable,
		IngredientsToAvoid:    NotAvailable,
		RecommendedDiet:       NotAvailable,
		PrecautionaryMeasures: NotAvailable,
	}
}

// Record is one reference table row.
type Record struct {
	Disease string
	Info    Info
}

// Resolver looks up guidance by disease label: case-insensitive exact
// match first, then a partial match where the queried label appears as a
// substring of a reference label. With multiple matches the first row in
// source order wins; the table carries no relevance ranking.
type Resolver struct {
	records []Record
}

// NewResolver creates a resolver over the given reference rows. A nil or
// empty table is valid; every lookup then returns an empty result.
func NewResolver(records []Record) *Resolver {
	return &Resolver{records: records}
}

// Len returns the number of reference rows.
func (r *Resolver) Len() int {
	return len(r.records)
}

// Lookup returns guidance for the disease label, or an all-NotAvailable
// Info when nothing matches. It never fails.
func (r *Resolver) Lookup(disease string) Info {
	needle := strings.ToLower(strings.TrimSpace(disease))
	if needle == "" {
		return EmptyInfo()
	}

	for _, rec := range r.records {
		if strings.ToLower(rec.Disease) == needle {
			return rec.Info
		}
	}

	for _, rec := range r.records {
		if strings.Contains(strings.ToLower(rec.Disease), needle) {
			return rec.Info
		}
	}

	return EmptyInfo()
}

func orNotAvailable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotAvailable
	}
	return s
}
