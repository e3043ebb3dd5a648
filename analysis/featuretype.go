// Package analysis interprets a trained risk model: it clusters samples
// and features by risk gradients and tests cluster assignments for
// association with mutation and copy-number features.
package analysis

import "strings"

// FeatureType is the genomic feature class encoded in a symbol's suffix.
type FeatureType int

const (
	// Unclassified features carry no recognized suffix and are excluded
	// from association testing.
	Unclassified FeatureType = iota
	// Mutation features ("_Mut") hold 0/1 mutation calls.
	Mutation
	// CopyNumber features ("_CNV") hold continuous copy-number values.
	CopyNumber
)

// ClassifySymbol determines a feature's type from the text after the last
// underscore in its symbol. Matching is exact and case-sensitive; anything
// other than "Mut" or "CNV" is Unclassified.
func ClassifySymbol(symbol string) FeatureType {
	suffix := symbol[strings.LastIndex(symbol, "_")+1:]
	switch suffix {
	case "Mut":
		return Mutation
	case "CNV":
		return CopyNumber
	default:
		return Unclassified
	}
}

func (t FeatureType) String() string {
	switch t {
	case Mutation:
		return "mutation"
	case CopyNumber:
		return "copy-number"
	default:
		return "unclassified"
	}
}
