package transform

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ehealth-suisse/i14y-transformer/models/i14y"
	"github.com/ehealth-suisse/i14y-transformer/util"
	"github.com/stretchr/testify/assert"
)

const conceptGolden = `{
    "data": {
        "codeListEntryValueMaxLength": 30,
        "codeListEntryValueType": "String",
        "conceptType": "CodeList",
        "conformsTo": [],
        "description": {
            "de": "Rollen im EPD",
            "en": "Roles in the EPR",
            "fr": null,
            "it": null
        },
        "identifier": "2.16.756.5.30.1.127.3.10.1.1.3",
        "keywords": [],
        "name": {
            "de": "EprRole",
            "en": "EprRole",
            "fr": "EprRole",
            "it": "EprRole"
        },
        "publisher": {
            "identifier": "CH_eHealth",
            "name": {
                "de": "eHealth Suisse",
                "en": "eHealth Suisse",
                "fr": "eHealth Suisse",
                "it": "eHealth Suisse"
            }
        },
        "responsiblePerson": {
            "email": "p.graber@example.org"
        },
        "responsibleDeputy": {},
        "themes": [],
        "validFrom": "2024-06-01",
        "version": "2.0.0"
    }
}`

func TestRenderConceptDocument(t *testing.T) {
	concept := i14y.Concept{
		Name:       util.StringPtr("EprRole"),
		Identifier: "2.16.756.5.30.1.127.3.10.1.1.3",
		Descriptions: i14y.Descriptions{
			DE: util.StringPtr("Rollen im EPD"),
			EN: util.StringPtr("Roles in the EPR"),
		},
		ValidFrom: "2024-06-01",
		Version:   "2.0.0",
	}
	responsible := i14y.Contact{Email: "p.graber@example.org"}

	doc := RenderConcept(concept, responsible, i14y.Contact{}, testConfig())
	got, err := json.MarshalIndent(doc, "", "    ")
	assert.NoError(t, err)
	assert.Equal(t, conceptGolden, string(got))
}

func TestRenderConceptWithoutNameAndIdentifier(t *testing.T) {
	doc := RenderConcept(i14y.Concept{ValidFrom: "2024-06-01", Version: "1.0.0"}, i14y.Contact{}, i14y.Contact{}, testConfig())
	assert.Nil(t, doc.Data.Identifier)
	assert.Nil(t, doc.Data.Name.DE)
	assert.Nil(t, doc.Data.Description.EN)

	got, err := json.Marshal(doc)
	assert.NoError(t, err)
	assert.Contains(t, string(got), `"identifier":null`)
	assert.Contains(t, string(got), `"name":{"de":null,"en":null,"fr":null,"it":null}`)
}

func sameTexts(value string) i14y.LanguageTexts {
	return i14y.LanguageTexts{DE: value, EN: value, FR: value, IT: value, RM: value}
}

func testGroup() i14y.EntryGroup {
	return i14y.EntryGroup{
		Entry: i14y.CodeEntry{
			Code:         "APP",
			DisplayNames: i14y.DisplayNames{DE: "Termine", EN: "Appointments", FR: "Rendez-vous", IT: "Appuntamenti", RM: "Appointments"},
			ValidFrom:    "2024-06-01",
		},
		CodeSystem: i14y.CodeSystemAnnotation{
			Identifier: "2.16.840.1.113883.6.96",
			Title:      "SNOMED CT",
			Texts:      sameTexts("SNOMED CT"),
		},
		PeriodStart: i14y.PeriodAnnotation{Title: "start", Date: "2024-06-01"},
		PeriodEnd:   i14y.PeriodAnnotation{Title: "end", Date: "2100-06-01"},
		Preferred:   i14y.NewPreferredDesignation(),
		Acceptable:  i14y.NewAcceptableDesignation(),
	}
}

func TestRenderCodeListEntriesAnnotationOrder(t *testing.T) {
	group := testGroup()
	group.Preferred.Texts.DE = "Termine"
	group.Acceptable.Texts.DE = "Sitzungen"

	doc := RenderCodeListEntries([]i14y.EntryGroup{group})
	assert.Len(t, doc.Data, 1)

	entry := doc.Data[0]
	assert.Len(t, entry.Annotations, 5)

	var identifiers, types []string
	for _, annotation := range entry.Annotations {
		identifiers = append(identifiers, annotation.Identifier)
		types = append(types, annotation.Type)
	}
	assert.Equal(t, []string{"2.16.840.1.113883.6.96", "end", "start", "900000000000548007", "900000000000549004"}, identifiers)
	assert.Equal(t, []string{"CodeSystem", "Period", "Period", "Designation", "Designation"}, types)

	// Periods are English-only and end precedes start.
	assert.Equal(t, map[string]string{"en": "2100-06-01"}, entry.Annotations[1].Text)
	assert.Equal(t, map[string]string{"en": "2024-06-01"}, entry.Annotations[2].Text)
}

func TestRenderCodeListEntriesAcceptableOmitted(t *testing.T) {
	group := testGroup()
	group.Acceptable.Texts = i14y.LanguageTexts{DE: "   ", FR: "\t"}

	doc := RenderCodeListEntries([]i14y.EntryGroup{group})
	entry := doc.Data[0]
	assert.Len(t, entry.Annotations, 4)
	for _, annotation := range entry.Annotations {
		assert.NotEqual(t, "900000000000549004", annotation.Identifier)
	}
}

func TestRenderCodeListEntriesAcceptablePrunesEmptyLanguages(t *testing.T) {
	group := testGroup()
	group.Acceptable.Texts = i14y.LanguageTexts{DE: " Sitzungen ", FR: "Séances"}

	doc := RenderCodeListEntries([]i14y.EntryGroup{group})
	entry := doc.Data[0]
	assert.Len(t, entry.Annotations, 5)
	// Only non-empty languages survive, values stay untrimmed.
	assert.Equal(t, map[string]string{"de": " Sitzungen ", "fr": "Séances"}, entry.Annotations[4].Text)
}

func TestRenderCodeListEntriesFullTextMappings(t *testing.T) {
	// CodeSystem and Preferred mappings keep all five languages even when
	// every text is empty.
	doc := RenderCodeListEntries([]i14y.EntryGroup{testGroup()})
	entry := doc.Data[0]
	assert.Len(t, entry.Annotations, 4)
	assert.Equal(t, sameTexts("SNOMED CT").Map(), entry.Annotations[0].Text)
	assert.Equal(t, map[string]string{"de": "", "en": "", "fr": "", "it": "", "rm": ""}, entry.Annotations[3].Text)
}

func TestRenderCodeListEntriesParentCode(t *testing.T) {
	root := testGroup()
	root.Entry.Code = "GRP"
	child := testGroup()
	child.Entry.Code = "PAT"
	child.Entry.ParentCode = "GRP"

	doc := RenderCodeListEntries([]i14y.EntryGroup{root, child})
	got, err := json.MarshalIndent(doc, "", "    ")
	assert.NoError(t, err)

	// parentCode appears for the child only, roots omit the key entirely.
	assert.Equal(t, 1, strings.Count(string(got), `"parentCode"`))
	assert.Contains(t, string(got), `"parentCode": "GRP"`)
}
