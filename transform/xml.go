package transform

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ehealth-suisse/i14y-transformer/models/i14y"
)

// xmlElement is a generic element-tree node. ART-DECOR wraps valueSet
// exports differently per endpoint, so the document is walked generically
// instead of being unmarshalled into a fixed schema.
type xmlElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []xmlElement `xml:",any"`
	Text     string       `xml:",chardata"`
}

// attr returns a local attribute's value and whether it exists.
func (e *xmlElement) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// attrValue returns a local attribute's value, or "" when absent.
func (e *xmlElement) attrValue(name string) string {
	value, _ := e.attr(name)
	return value
}

// childElements returns the direct children with the given local name.
func (e *xmlElement) childElements(name string) []*xmlElement {
	var out []*xmlElement
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			out = append(out, &e.Children[i])
		}
	}
	return out
}

// findElement returns the first element with the given local name, the root
// itself included, in document order.
func findElement(root *xmlElement, name string) *xmlElement {
	if root.XMLName.Local == name {
		return root
	}
	for i := range root.Children {
		if found := findElement(&root.Children[i], name); found != nil {
			return found
		}
	}
	return nil
}

// collectElements gathers every descendant with the given local name in
// document order, nested occurrences included.
func collectElements(root *xmlElement, name string) []*xmlElement {
	var out []*xmlElement
	var walk func(el *xmlElement)
	walk = func(el *xmlElement) {
		for i := range el.Children {
			child := &el.Children[i]
			if child.XMLName.Local == name {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

// Language tags of desc elements mapped to concept description slots. rm-CH
// has no description slot on I14Y and is ignored here, unlike in entry
// display names.
const (
	langTagDE = "de-CH"
	langTagEN = "en-US"
	langTagFR = "fr-CH"
	langTagIT = "it-CH"
	langTagRM = "rm-CH"
)

// parseXML reads one ART-DECOR valueSet XML export. The valueSet element may
// be the document root or nested inside a wrapper.
func (s *TransformService) parseXML(ctx context.Context, path string, params Params) (i14y.Concept, []i14y.EntryGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return i14y.Concept{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var root xmlElement
	if err := xml.Unmarshal(data, &root); err != nil {
		return i14y.Concept{}, nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, filepath.Base(path), err)
	}
	valueSet := findElement(&root, "valueSet")
	if valueSet == nil {
		return i14y.Concept{}, nil, fmt.Errorf("%w: %s contains no valueSet element", ErrMalformedInput, filepath.Base(path))
	}

	concept := i14y.Concept{
		ValidFrom: params.ValidFrom,
		Version:   params.Version,
		IsNew:     params.NewConcept,
	}
	if name, ok := valueSet.attr("name"); ok {
		concept.Name = &name
	}
	if id, ok := valueSet.attr("id"); ok {
		concept.Identifier = id
		s.resolveRegistryID(ctx, &concept)
	}

	codeSystemNames := make(map[string]string)
	for _, source := range valueSet.childElements("sourceCodeSystem") {
		codeSystemNames[source.attrValue("id")] = source.attrValue("identifierName")
	}

	for _, desc := range valueSet.childElements("desc") {
		lang := desc.attrValue("language")
		text, err := descriptionText(desc)
		if err != nil {
			s.log.Warn().Str("file", filepath.Base(path)).Str("language", lang).Msg("skipping description without text")
			continue
		}
		switch lang {
		case langTagDE:
			concept.Descriptions.DE = &text
		case langTagEN:
			concept.Descriptions.EN = &text
		case langTagFR:
			concept.Descriptions.FR = &text
		case langTagIT:
			concept.Descriptions.IT = &text
		}
	}

	var groups []i14y.EntryGroup
	parentCode := "" // code of the last level-0 element seen
	for _, conceptEl := range collectElements(valueSet, "concept") {
		display := conceptEl.attrValue("displayName")
		entry := i14y.CodeEntry{
			Code:      conceptEl.attrValue("code"),
			ValidFrom: params.ValidFrom,
			DisplayNames: i14y.DisplayNames{
				DE: display,
				EN: display,
				FR: display,
				IT: display,
				RM: display,
			},
		}
		if conceptEl.attrValue("level") == "0" {
			parentCode = entry.Code
		} else {
			entry.ParentCode = parentCode
		}

		preferred := i14y.NewPreferredDesignation()
		acceptable := i14y.NewAcceptableDesignation()
		for _, designation := range conceptEl.childElements("designation") {
			lang := designation.attrValue("language")
			text := designation.attrValue("displayName")
			switch designation.attrValue("type") {
			case "preferred":
				// A preferred designation overwrites the display name for
				// every language except en-US, which keeps the displayName
				// attribute default.
				switch lang {
				case langTagDE:
					preferred.Texts.DE = text
					entry.DisplayNames.DE = text
				case langTagEN:
					preferred.Texts.EN = text
				case langTagFR:
					preferred.Texts.FR = text
					entry.DisplayNames.FR = text
				case langTagIT:
					preferred.Texts.IT = text
					entry.DisplayNames.IT = text
				case langTagRM:
					preferred.Texts.RM = text
					entry.DisplayNames.RM = text
				}
			case "synonym":
				switch lang {
				case langTagDE:
					acceptable.Texts.DE = text
				case langTagEN:
					acceptable.Texts.EN = text
				case langTagFR:
					acceptable.Texts.FR = text
				case langTagIT:
					acceptable.Texts.IT = text
				case langTagRM:
					acceptable.Texts.RM = text
				}
			}
		}

		codeSystemID := conceptEl.attrValue("codeSystem")
		codeSystemName := codeSystemNames[codeSystemID]
		groups = append(groups, i14y.EntryGroup{
			Entry: entry,
			CodeSystem: i14y.CodeSystemAnnotation{
				Identifier: codeSystemID,
				Title:      codeSystemName,
				Texts: i14y.LanguageTexts{
					DE: codeSystemName,
					EN: codeSystemName,
					FR: codeSystemName,
					IT: codeSystemName,
					RM: codeSystemName,
				},
			},
			PeriodStart: i14y.PeriodAnnotation{Title: "start", Date: s.config.PeriodStart},
			PeriodEnd:   i14y.PeriodAnnotation{Title: "end", Date: s.config.PeriodEnd},
			Preferred:   preferred,
			Acceptable:  acceptable,
		})
	}
	return concept, groups, nil
}

// descriptionText extracts a description's text, preferring a nested div
// over the element's own character data. An empty result after trimming is
// reported as ErrNullText.
func descriptionText(el *xmlElement) (string, error) {
	node := el
	if divs := el.childElements("div"); len(divs) > 0 {
		node = divs[0]
	}
	text := strings.TrimSpace(node.Text)
	if text == "" {
		return "", ErrNullText
	}
	return text, nil
}
