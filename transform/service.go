// Package transform converts ART-DECOR value-set exports (CSV and XML) into
// the I14Y registry's concept and codelist-entries JSON documents.
package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ehealth-suisse/i14y-transformer/models/i14y"
	"github.com/rs/zerolog"
)

// Output subfolders, one per produced document kind.
const (
	ConceptsSubdir  = "Concepts"
	CodelistsSubdir = "Codelists"
)

const defaultVersion = "1.0.0"

// ConceptLookup resolves an existing registry concept from a source OID.
// An empty result is a normal outcome, not an error.
type ConceptLookup interface {
	LookupConcept(ctx context.Context, identifier string) (registryID string, found bool, err error)
}

// PersonDirectory maps short contact codes to contact records. Unknown keys
// yield the zero Contact.
type PersonDirectory interface {
	Resolve(key string) i14y.Contact
}

// Config carries the fixed vocabulary and period defaults applied during
// transformation.
type Config struct {
	PublisherIdentifier string
	PublisherName       string
	ConceptType         string
	ValueType           string
	ValueMaxLength      int
	PeriodStart         string
	PeriodEnd           string
}

// Params are the caller-supplied inputs of one transformation run. They
// apply uniformly to every file of the run.
type Params struct {
	ResponsibleKey string
	DeputyKey      string
	ValidFrom      string
	Version        string
	NewConcept     bool
}

// Result describes the artifacts produced for one source file.
type Result struct {
	SourceFile  string
	ConceptName string
	OutputName  string
	ConceptPath string
	EntriesPath string
	RegistryID  string
	IsNew       bool
	Entries     int
}

// TransformService converts value-set exports into I14Y documents. A nil
// lookup disables registry resolution and every concept is treated as new.
type TransformService struct {
	config  Config
	lookup  ConceptLookup
	persons PersonDirectory
	log     zerolog.Logger
}

// NewTransformService creates a TransformService.
func NewTransformService(config Config, lookup ConceptLookup, persons PersonDirectory, log zerolog.Logger) *TransformService {
	if persons == nil {
		persons = emptyDirectory{}
	}
	return &TransformService{
		config:  config,
		lookup:  lookup,
		persons: persons,
		log:     log,
	}
}

type emptyDirectory struct{}

func (emptyDirectory) Resolve(string) i14y.Contact { return i14y.Contact{} }

// TransformFolder processes every .csv and .xml file in inputDir and writes
// the produced documents below outputDir. A single file's failure is logged
// and skipped; the batch continues with the next file.
func (s *TransformService) TransformFolder(ctx context.Context, inputDir, outputDir string, params Params) ([]Result, error) {
	for _, dir := range []string{filepath.Join(outputDir, ConceptsSubdir), filepath.Join(outputDir, CodelistsSubdir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	files, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", inputDir, err)
	}

	var results []Result
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		if !strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, ".xml") {
			continue
		}
		result, err := s.TransformFile(ctx, filepath.Join(inputDir, name), outputDir, params)
		if err != nil {
			s.log.Error().Err(err).Str("file", name).Msg("transformation failed, skipping file")
			continue
		}
		s.log.Info().
			Str("file", name).
			Str("output", result.OutputName).
			Int("entries", result.Entries).
			Msg("transformed value set")
		results = append(results, *result)
	}
	return results, nil
}

// TransformFile parses one export, renders both documents and writes them as
// <concept>_<registryId>_transformed.json (or <concept>_transformed.json
// when no registry id was resolved) into the Concepts and Codelists
// subfolders of outputDir.
func (s *TransformService) TransformFile(ctx context.Context, path, outputDir string, params Params) (*Result, error) {
	if params.Version == "" {
		params.Version = defaultVersion
	}
	fileName := filepath.Base(path)
	conceptName := ConceptNameFromFile(fileName)

	var (
		concept i14y.Concept
		groups  []i14y.EntryGroup
		err     error
	)
	switch {
	case strings.HasSuffix(fileName, ".csv"):
		concept, groups, err = s.parseCSV(ctx, path, params)
	case strings.HasSuffix(fileName, ".xml"):
		concept, groups, err = s.parseXML(ctx, path, params)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrMalformedInput, fileName)
	}
	if err != nil {
		return nil, err
	}

	outputName := conceptName + "_transformed.json"
	if concept.RegistryID != "" {
		outputName = fmt.Sprintf("%s_%s_transformed.json", conceptName, concept.RegistryID)
	}

	conceptDoc := RenderConcept(concept, s.persons.Resolve(params.ResponsibleKey), s.persons.Resolve(params.DeputyKey), s.config)
	entriesDoc := RenderCodeListEntries(groups)

	result := &Result{
		SourceFile:  fileName,
		ConceptName: conceptName,
		OutputName:  outputName,
		ConceptPath: filepath.Join(outputDir, ConceptsSubdir, outputName),
		EntriesPath: filepath.Join(outputDir, CodelistsSubdir, outputName),
		RegistryID:  concept.RegistryID,
		IsNew:       concept.IsNew,
		Entries:     len(groups),
	}
	if err := writeJSON(result.ConceptPath, conceptDoc); err != nil {
		return nil, err
	}
	if err := writeJSON(result.EntriesPath, entriesDoc); err != nil {
		return nil, err
	}
	return result, nil
}

// resolveRegistryID queries the registry for an existing concept with the
// extracted identifier. Misses and lookup failures mark the concept as new;
// transformation proceeds either way.
func (s *TransformService) resolveRegistryID(ctx context.Context, concept *i14y.Concept) {
	if _, err := i14y.OID(concept.Identifier).MarshalText(); err != nil {
		s.log.Warn().Str("identifier", concept.Identifier).Msg("identifier is not a valid OID, skipping lookup")
		concept.IsNew = true
		return
	}
	if s.lookup == nil {
		concept.IsNew = true
		return
	}
	registryID, found, err := s.lookup.LookupConcept(ctx, concept.Identifier)
	if err != nil {
		s.log.Warn().Err(err).Str("identifier", concept.Identifier).Msg("concept lookup failed, treating concept as new")
		concept.IsNew = true
		return
	}
	if !found || registryID == "" {
		s.log.Info().Str("identifier", concept.Identifier).Msg("concept not found on I14Y, a new concept will be created")
		concept.IsNew = true
		return
	}
	concept.RegistryID = registryID
	s.log.Info().Str("identifier", concept.Identifier).Str("id", registryID).Msg("found existing concept")
}

// writeJSON writes a document with 4-space indentation, UTF-8 and without
// HTML escaping, creating the parent directory as needed.
func writeJSON(path string, document any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(document); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
