// Package i14y holds the intermediate value-set model shared by the parsers
// and the serializer, plus the JSON document schemas of the I14Y registry.
package i14y

import "strings"

// Language keys used by I14Y text mappings.
const (
	LangDE = "de"
	LangEN = "en"
	LangFR = "fr"
	LangIT = "it"
	LangRM = "rm"
)

// SNOMED CT description-type identifiers used by designation annotations.
const (
	PreferredIdentifier  = "900000000000548007"
	AcceptableIdentifier = "900000000000549004"
)

// Annotation type discriminators of the codelist-entry schema.
const (
	AnnotationCodeSystem  = "CodeSystem"
	AnnotationPeriod      = "Period"
	AnnotationDesignation = "Designation"
)

// Concept is the normalized header of one parsed value set. Instances are
// value-constructed by a parser and not mutated afterwards.
type Concept struct {
	// Name is shared across all display languages. Nil means the source
	// carried no name at all, which serializes as null.
	Name         *string
	Identifier   string
	RegistryID   string // id on I14Y; empty until resolved by lookup
	IsNew        bool   // no registry id could be resolved
	Descriptions Descriptions
	ValidFrom    string
	Version      string
}

// Descriptions carries the per-language concept descriptions. I14Y has no
// Rumantsch slot here, unlike entry display names.
type Descriptions struct {
	DE *string
	EN *string
	FR *string
	IT *string
}

// CodeEntry is one leaf value of a value set.
type CodeEntry struct {
	Code         string
	DisplayNames DisplayNames
	ParentCode   string // code of the preceding level-0 entry, empty for roots
	ValidFrom    string
}

// DisplayNames holds the five display-name language slots of an entry.
type DisplayNames struct {
	DE string
	EN string
	FR string
	IT string
	RM string
}

// LanguageTexts is a full five-language text set as used by code-system and
// designation annotations.
type LanguageTexts struct {
	DE string
	EN string
	FR string
	IT string
	RM string
}

// Map returns all five slots keyed by language code, empty values included.
func (t LanguageTexts) Map() map[string]string {
	return map[string]string{
		LangDE: t.DE,
		LangEN: t.EN,
		LangFR: t.FR,
		LangIT: t.IT,
		LangRM: t.RM,
	}
}

// TrimmedNonEmpty returns only the languages whose text is non-empty after
// trimming. Values are kept untrimmed.
func (t LanguageTexts) TrimmedNonEmpty() map[string]string {
	out := make(map[string]string)
	for lang, text := range t.Map() {
		if strings.TrimSpace(text) != "" {
			out[lang] = text
		}
	}
	return out
}

// CodeSystemAnnotation names the code system an entry's code belongs to.
type CodeSystemAnnotation struct {
	Identifier string
	Title      string
	Texts      LanguageTexts
}

// PeriodAnnotation is a validity boundary. Title doubles as the annotation
// identifier ("start" or "end") and the date is English-only in the output.
type PeriodAnnotation struct {
	Title string
	Date  string
}

// DesignationAnnotation carries preferred or acceptable designations.
type DesignationAnnotation struct {
	Identifier string
	Title      string
	Texts      LanguageTexts
}

// NewPreferredDesignation returns an empty Preferred designation annotation.
func NewPreferredDesignation() DesignationAnnotation {
	return DesignationAnnotation{Identifier: PreferredIdentifier, Title: "Preferred"}
}

// NewAcceptableDesignation returns an empty Acceptable designation annotation.
func NewAcceptableDesignation() DesignationAnnotation {
	return DesignationAnnotation{Identifier: AcceptableIdentifier, Title: "Acceptable"}
}

// EntryGroup couples a CodeEntry with the annotations derived for it during
// parsing. The serializer consumes groups in parse order.
type EntryGroup struct {
	Entry       CodeEntry
	CodeSystem  CodeSystemAnnotation
	PeriodStart PeriodAnnotation
	PeriodEnd   PeriodAnnotation
	Preferred   DesignationAnnotation
	Acceptable  DesignationAnnotation
}
