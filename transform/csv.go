package transform

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ehealth-suisse/i14y-transformer/models/i14y"
)

// Row 1, column 1 of an ART-DECOR CSV export reads like
// "Value Set DocumentEntry.classCode - 2.16.756.5.30.1.127.3.10.1.3 - 2025-01-22".
// Both extractions are optional; a non-matching header yields no name or
// identifier rather than failing.
var (
	valueSetNameRegex       = regexp.MustCompile(`Value Set (.*?) -`)
	valueSetIdentifierRegex = regexp.MustCompile(`- ([\d.]+)`)
)

// Fixed column positions of the export's data rows.
const (
	columnCode            = 2
	columnDisplayEN       = 3
	columnCodeSystemID    = 4
	columnCodeSystemTitle = 5
)

// parseCSV reads one ART-DECOR CSV export: row 1 carries the value-set name
// and OID as free text, row 2 labels the designation columns, every further
// row is one code.
func (s *TransformService) parseCSV(ctx context.Context, path string, params Params) (i14y.Concept, []i14y.EntryGroup, error) {
	file, err := os.Open(path)
	if err != nil {
		return i14y.Concept{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	firstRow, err := reader.Read()
	if err != nil {
		return i14y.Concept{}, nil, fmt.Errorf("%w: %s has no header row", ErrMalformedInput, filepath.Base(path))
	}

	concept := i14y.Concept{
		ValidFrom: params.ValidFrom,
		Version:   params.Version,
		IsNew:     params.NewConcept,
	}
	header := firstRow[0]
	if m := valueSetNameRegex.FindStringSubmatch(header); m != nil {
		concept.Name = &m[1]
	}
	if m := valueSetIdentifierRegex.FindStringSubmatch(header); m != nil {
		concept.Identifier = m[1]
		s.resolveRegistryID(ctx, &concept)
	}

	indexRow, err := reader.Read()
	if err != nil {
		return i14y.Concept{}, nil, fmt.Errorf("%w: %s has no designation header row", ErrMalformedInput, filepath.Base(path))
	}
	indices := resolveDesignationIndices(indexRow)

	var groups []i14y.EntryGroup
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return i14y.Concept{}, nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, filepath.Base(path), err)
		}
		group, err := s.entryFromRow(row, indices, params)
		if err != nil {
			return i14y.Concept{}, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		groups = append(groups, group)
	}
	return concept, groups, nil
}

// entryFromRow maps one data row onto a CodeEntry and its annotations. A row
// shorter than any referenced column fails the whole file.
func (s *TransformService) entryFromRow(row []string, indices designationIndices, params Params) (i14y.EntryGroup, error) {
	required := columnCodeSystemTitle
	if max := indices.maxIndex(); max > required {
		required = max
	}
	if len(row) <= required {
		return i14y.EntryGroup{}, fmt.Errorf("%w: row has %d columns, needs %d", ErrOutOfRange, len(row), required+1)
	}

	pick := func(index int, target *string) {
		if index >= 0 {
			*target = row[index]
		}
	}

	entry := i14y.CodeEntry{
		Code:         row[columnCode],
		ValidFrom:    params.ValidFrom,
		DisplayNames: i14y.DisplayNames{EN: row[columnDisplayEN]},
	}
	pick(indices.dePreferred, &entry.DisplayNames.DE)
	pick(indices.frPreferred, &entry.DisplayNames.FR)
	pick(indices.itPreferred, &entry.DisplayNames.IT)
	pick(indices.rmPreferred, &entry.DisplayNames.RM)

	title := row[columnCodeSystemTitle]
	codeSystem := i14y.CodeSystemAnnotation{
		Identifier: row[columnCodeSystemID],
		Title:      title,
		Texts:      i14y.LanguageTexts{DE: title, EN: title, FR: title, IT: title, RM: title},
	}

	preferred := i14y.NewPreferredDesignation()
	pick(indices.enPreferred, &preferred.Texts.EN)
	pick(indices.dePreferred, &preferred.Texts.DE)
	pick(indices.frPreferred, &preferred.Texts.FR)
	pick(indices.itPreferred, &preferred.Texts.IT)
	pick(indices.rmPreferred, &preferred.Texts.RM)

	acceptable := i14y.NewAcceptableDesignation()
	pick(indices.enSynonym, &acceptable.Texts.EN)
	pick(indices.deSynonym, &acceptable.Texts.DE)
	pick(indices.frSynonym, &acceptable.Texts.FR)
	pick(indices.itSynonym, &acceptable.Texts.IT)
	pick(indices.rmSynonym, &acceptable.Texts.RM)

	return i14y.EntryGroup{
		Entry:       entry,
		CodeSystem:  codeSystem,
		PeriodStart: i14y.PeriodAnnotation{Title: "start", Date: s.config.PeriodStart},
		PeriodEnd:   i14y.PeriodAnnotation{Title: "end", Date: s.config.PeriodEnd},
		Preferred:   preferred,
		Acceptable:  acceptable,
	}, nil
}
