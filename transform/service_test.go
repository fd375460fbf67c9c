package transform

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ehealth-suisse/i14y-transformer/models/i14y"
)

const testRegistryID = "08dd632d-aa6b-ffb2-a78b-fbff93d4f167"

// stubLookup answers concept lookups from a fixed table and records every
// identifier it was asked for.
type stubLookup struct {
	ids   map[string]string
	err   error
	calls []string
}

func (s *stubLookup) LookupConcept(_ context.Context, identifier string) (string, bool, error) {
	s.calls = append(s.calls, identifier)
	if s.err != nil {
		return "", false, s.err
	}
	id, ok := s.ids[identifier]
	return id, ok, nil
}

func testConfig() Config {
	return Config{
		PublisherIdentifier: "CH_eHealth",
		PublisherName:       "eHealth Suisse",
		ConceptType:         "CodeList",
		ValueType:           "String",
		ValueMaxLength:      30,
		PeriodStart:         "2024-06-01",
		PeriodEnd:           "2100-06-01",
	}
}

func testService(lookup ConceptLookup) *TransformService {
	return NewTransformService(testConfig(), lookup, nil, zerolog.Nop())
}

func testParams() Params {
	return Params{
		ResponsibleKey: "PGR",
		DeputyKey:      "SNE",
		ValidFrom:      "2024-06-01",
		Version:        "2.0.0",
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTransformFileWritesBothDocuments(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	path := writeFile(t, dir, "VS DocumentEntry.classCode (download 2025-01-22T07_36_23).csv", classCodeCSV)

	lookup := &stubLookup{ids: map[string]string{"2.16.756.5.30.1.127.3.10.1.3": testRegistryID}}
	service := testService(lookup)

	result, err := service.TransformFile(context.Background(), path, out, testParams())
	assert.NoError(t, err)
	assert.Equal(t, "DocumentEntry.classCode", result.ConceptName)
	assert.Equal(t, "DocumentEntry.classCode_"+testRegistryID+"_transformed.json", result.OutputName)
	assert.Equal(t, filepath.Join(out, "Concepts", result.OutputName), result.ConceptPath)
	assert.Equal(t, filepath.Join(out, "Codelists", result.OutputName), result.EntriesPath)
	assert.Equal(t, testRegistryID, result.RegistryID)
	assert.False(t, result.IsNew)
	assert.Equal(t, 2, result.Entries)

	var conceptDoc i14y.ConceptDocument
	data, err := os.ReadFile(result.ConceptPath)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(data, &conceptDoc))
	assert.Equal(t, "DocumentEntry.classCode", *conceptDoc.Data.Name.DE)
	assert.Equal(t, "2.0.0", conceptDoc.Data.Version)

	var entriesDoc i14y.CodeListEntriesDocument
	data, err = os.ReadFile(result.EntriesPath)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(data, &entriesDoc))
	assert.Len(t, entriesDoc.Data, 2)
	assert.Equal(t, "APP", entriesDoc.Data[0].Code)
}

func TestTransformFileWithoutRegistryID(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	path := writeFile(t, dir, "VS_EprRole.csv", eprRoleCSV)

	service := testService(&stubLookup{})

	result, err := service.TransformFile(context.Background(), path, out, testParams())
	assert.NoError(t, err)
	assert.Equal(t, "EprRole_transformed.json", result.OutputName)
	assert.True(t, result.IsNew)
	assert.Equal(t, "", result.RegistryID)
}

func TestTransformFileDefaultsVersion(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	path := writeFile(t, dir, "VS_EprRole.csv", eprRoleCSV)

	params := testParams()
	params.Version = ""
	result, err := testService(&stubLookup{}).TransformFile(context.Background(), path, out, params)
	assert.NoError(t, err)

	var conceptDoc i14y.ConceptDocument
	data, err := os.ReadFile(result.ConceptPath)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(data, &conceptDoc))
	assert.Equal(t, "1.0.0", conceptDoc.Data.Version)
}

func TestTransformFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "EprRole.txt", "not a value set")

	_, err := testService(&stubLookup{}).TransformFile(context.Background(), path, t.TempDir(), testParams())
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestTransformFileDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "VS_EprRole.csv", eprRoleCSV)
	service := testService(&stubLookup{})

	outA := t.TempDir()
	outB := t.TempDir()
	resultA, err := service.TransformFile(context.Background(), path, outA, testParams())
	assert.NoError(t, err)
	resultB, err := service.TransformFile(context.Background(), path, outB, testParams())
	assert.NoError(t, err)

	conceptA, _ := os.ReadFile(resultA.ConceptPath)
	conceptB, _ := os.ReadFile(resultB.ConceptPath)
	assert.Equal(t, string(conceptA), string(conceptB))

	entriesA, _ := os.ReadFile(resultA.EntriesPath)
	entriesB, _ := os.ReadFile(resultB.EntriesPath)
	assert.Equal(t, string(entriesA), string(entriesB))
}

func TestTransformFolderSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writeFile(t, dir, "VS_EprRole.csv", eprRoleCSV)
	writeFile(t, dir, "broken.xml", "<unclosed")
	writeFile(t, dir, "notes.txt", "ignored entirely")

	results, err := testService(&stubLookup{}).TransformFolder(context.Background(), dir, out, testParams())
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "VS_EprRole.csv", results[0].SourceFile)
}

func TestTransformFolderCreatesSubdirs(t *testing.T) {
	out := t.TempDir()
	results, err := testService(&stubLookup{}).TransformFolder(context.Background(), t.TempDir(), out, testParams())
	assert.NoError(t, err)
	assert.Empty(t, results)

	for _, sub := range []string{ConceptsSubdir, CodelistsSubdir} {
		info, err := os.Stat(filepath.Join(out, sub))
		assert.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestTransformFolderMissingInputDir(t *testing.T) {
	_, err := testService(&stubLookup{}).TransformFolder(context.Background(), filepath.Join(t.TempDir(), "absent"), t.TempDir(), testParams())
	assert.Error(t, err)
}

func TestResolveRegistryID(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		lookup     *stubLookup
		wantID     string
		wantNew    bool
		wantCalls  int
	}{
		{
			name:       "found",
			identifier: "2.16.756.5.30.1.127.3.10.1.3",
			lookup:     &stubLookup{ids: map[string]string{"2.16.756.5.30.1.127.3.10.1.3": testRegistryID}},
			wantID:     testRegistryID,
			wantCalls:  1,
		},
		{
			name:       "miss marks concept new",
			identifier: "2.16.756.5.30.1.127.3.10.1.3",
			lookup:     &stubLookup{},
			wantNew:    true,
			wantCalls:  1,
		},
		{
			name:       "lookup error marks concept new",
			identifier: "2.16.756.5.30.1.127.3.10.1.3",
			lookup:     &stubLookup{err: errors.New("connection refused")},
			wantNew:    true,
			wantCalls:  1,
		},
		{
			name:       "invalid identifier skips lookup",
			identifier: "not-an-oid",
			lookup:     &stubLookup{ids: map[string]string{"not-an-oid": testRegistryID}},
			wantNew:    true,
			wantCalls:  0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service := testService(tc.lookup)
			concept := i14y.Concept{Identifier: tc.identifier}
			service.resolveRegistryID(context.Background(), &concept)
			assert.Equal(t, tc.wantID, concept.RegistryID)
			assert.Equal(t, tc.wantNew, concept.IsNew)
			assert.Len(t, tc.lookup.calls, tc.wantCalls)
		})
	}
}

func TestResolveRegistryIDWithoutLookup(t *testing.T) {
	service := testService(nil)
	concept := i14y.Concept{Identifier: "2.16.756.5.30.1.127.3.10.1.3"}
	service.resolveRegistryID(context.Background(), &concept)
	assert.True(t, concept.IsNew)
	assert.Equal(t, "", concept.RegistryID)
}

func TestWriteJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "doc.json")
	err := writeJSON(path, map[string]string{"title": "Labels & <markers>"})
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	content := string(data)
	assert.Equal(t, "{\n    \"title\": \"Labels & <markers>\"\n}\n", content)
}
