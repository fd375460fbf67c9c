package i14y

// ConceptDocument is the registry's "concept" JSON document.
type ConceptDocument struct {
	Data ConceptData `json:"data"`
}

// ConceptData mirrors the field order of the I14Y concept schema.
type ConceptData struct {
	CodeListEntryValueMaxLength int           `json:"codeListEntryValueMaxLength"`
	CodeListEntryValueType      string        `json:"codeListEntryValueType"`
	ConceptType                 string        `json:"conceptType"`
	ConformsTo                  []string      `json:"conformsTo"`
	Description                 NullableTexts `json:"description"`
	Identifier                  *string       `json:"identifier"`
	Keywords                    []string      `json:"keywords"`
	Name                        NullableTexts `json:"name"`
	Publisher                   Publisher     `json:"publisher"`
	ResponsiblePerson           Contact       `json:"responsiblePerson"`
	ResponsibleDeputy           Contact       `json:"responsibleDeputy"`
	Themes                      []string      `json:"themes"`
	ValidFrom                   string        `json:"validFrom"`
	Version                     string        `json:"version"`
}

// NullableTexts is a four-language text mapping whose absent entries
// serialize as null rather than as empty strings.
type NullableTexts struct {
	DE *string `json:"de"`
	EN *string `json:"en"`
	FR *string `json:"fr"`
	IT *string `json:"it"`
}

// Publisher identifies the publishing organisation.
type Publisher struct {
	Identifier string         `json:"identifier"`
	Name       PublisherTexts `json:"name"`
}

// PublisherTexts replicates the publisher name into the four I14Y languages.
type PublisherTexts struct {
	DE string `json:"de"`
	EN string `json:"en"`
	FR string `json:"fr"`
	IT string `json:"it"`
}

// Contact is a resolved responsible or deputy person. An unknown person
// serializes as an empty object.
type Contact struct {
	Email string `json:"email,omitempty"`
}

// CodeListEntriesDocument is the registry's "codelist-entries" JSON document.
type CodeListEntriesDocument struct {
	Data []CodeListEntry `json:"data"`
}

// CodeListEntry is one rendered entry. ParentCode is omitted entirely when
// empty, never emitted as null.
type CodeListEntry struct {
	Annotations []EntryAnnotation `json:"annotations"`
	Code        string            `json:"code"`
	Name        EntryTexts        `json:"name"`
	ValidFrom   string            `json:"validFrom"`
	ParentCode  string            `json:"parentCode,omitempty"`
}

// EntryTexts holds the five display-name languages of a rendered entry.
type EntryTexts struct {
	DE string `json:"de"`
	EN string `json:"en"`
	FR string `json:"fr"`
	IT string `json:"it"`
	RM string `json:"rm"`
}

// EntryAnnotation is one annotation of a rendered entry. Text keys marshal
// in lexical order, which matches the registry's de/en/fr/it/rm layout.
type EntryAnnotation struct {
	Identifier string            `json:"identifier"`
	Text       map[string]string `json:"text"`
	Title      string            `json:"title"`
	Type       string            `json:"type"`
}
