package transform

import "github.com/ehealth-suisse/i14y-transformer/models/i14y"

// RenderConcept renders the registry's concept document for one parsed value
// set. Pure: the same inputs always yield the same document.
func RenderConcept(concept i14y.Concept, responsible, deputy i14y.Contact, config Config) i14y.ConceptDocument {
	var identifier *string
	if concept.Identifier != "" {
		identifier = &concept.Identifier
	}
	return i14y.ConceptDocument{
		Data: i14y.ConceptData{
			CodeListEntryValueMaxLength: config.ValueMaxLength,
			CodeListEntryValueType:      config.ValueType,
			ConceptType:                 config.ConceptType,
			ConformsTo:                  []string{},
			Description: i14y.NullableTexts{
				DE: concept.Descriptions.DE,
				EN: concept.Descriptions.EN,
				FR: concept.Descriptions.FR,
				IT: concept.Descriptions.IT,
			},
			Identifier: identifier,
			Keywords:   []string{},
			Name: i14y.NullableTexts{
				DE: concept.Name,
				EN: concept.Name,
				FR: concept.Name,
				IT: concept.Name,
			},
			Publisher: i14y.Publisher{
				Identifier: config.PublisherIdentifier,
				Name: i14y.PublisherTexts{
					DE: config.PublisherName,
					EN: config.PublisherName,
					FR: config.PublisherName,
					IT: config.PublisherName,
				},
			},
			ResponsiblePerson: responsible,
			ResponsibleDeputy: deputy,
			Themes:            []string{},
			ValidFrom:         concept.ValidFrom,
			Version:           concept.Version,
		},
	}
}

// RenderCodeListEntries renders the codelist-entries document. Annotations
// keep a fixed order per entry: CodeSystem, Period end, Period start, the
// Preferred designation, and last the Acceptable designation, included only
// when at least one of its texts is non-empty after trimming. CodeSystem and
// Preferred text mappings are never pruned.
func RenderCodeListEntries(groups []i14y.EntryGroup) i14y.CodeListEntriesDocument {
	entries := make([]i14y.CodeListEntry, 0, len(groups))
	for _, group := range groups {
		annotations := []i14y.EntryAnnotation{
			{
				Identifier: group.CodeSystem.Identifier,
				Text:       group.CodeSystem.Texts.Map(),
				Title:      group.CodeSystem.Title,
				Type:       i14y.AnnotationCodeSystem,
			},
			{
				Identifier: group.PeriodEnd.Title,
				Text:       map[string]string{i14y.LangEN: group.PeriodEnd.Date},
				Title:      group.PeriodEnd.Title,
				Type:       i14y.AnnotationPeriod,
			},
			{
				Identifier: group.PeriodStart.Title,
				Text:       map[string]string{i14y.LangEN: group.PeriodStart.Date},
				Title:      group.PeriodStart.Title,
				Type:       i14y.AnnotationPeriod,
			},
			{
				Identifier: group.Preferred.Identifier,
				Text:       group.Preferred.Texts.Map(),
				Title:      group.Preferred.Title,
				Type:       i14y.AnnotationDesignation,
			},
		}
		if text := group.Acceptable.Texts.TrimmedNonEmpty(); len(text) > 0 {
			annotations = append(annotations, i14y.EntryAnnotation{
				Identifier: group.Acceptable.Identifier,
				Text:       text,
				Title:      group.Acceptable.Title,
				Type:       i14y.AnnotationDesignation,
			})
		}
		entries = append(entries, i14y.CodeListEntry{
			Annotations: annotations,
			Code:        group.Entry.Code,
			Name: i14y.EntryTexts{
				DE: group.Entry.DisplayNames.DE,
				EN: group.Entry.DisplayNames.EN,
				FR: group.Entry.DisplayNames.FR,
				IT: group.Entry.DisplayNames.IT,
				RM: group.Entry.DisplayNames.RM,
			},
			ValidFrom:  group.Entry.ValidFrom,
			ParentCode: group.Entry.ParentCode,
		})
	}
	return i14y.CodeListEntriesDocument{Data: entries}
}
