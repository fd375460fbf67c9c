// Package server is the web front end of the transformer suite. It accepts
// value-set uploads, runs the transformation and relays push commands to the
// I14Y API client.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ehealth-suisse/i14y-transformer/codelists"
	"github.com/ehealth-suisse/i14y-transformer/transform"
)

// Transformer runs one transformation batch over an input folder.
type Transformer interface {
	TransformFolder(ctx context.Context, inputDir, outputDir string, params transform.Params) ([]transform.Result, error)
}

// Pusher is the slice of the I14Y API client the front end drives.
type Pusher interface {
	CreateConcept(ctx context.Context, path string) error
	CreateConceptFolder(ctx context.Context, dir string) ([]string, error)
	ImportCodeListEntries(ctx context.Context, path, conceptID string) error
	ReplaceCodeListEntries(ctx context.Context, path, conceptID string) error
	ImportCodelistFolder(ctx context.Context, dir string, registry *codelists.Registry) ([]string, error)
	DeleteCodeListEntries(ctx context.Context, conceptID string) error
}

// Config carries the front end's listen port and working folders.
type Config struct {
	Port         string
	UploadFolder string
	OutputFolder string
}

// Server handles the GUI's HTTP API.
type Server struct {
	config      Config
	transformer Transformer
	api         Pusher
	registry    *codelists.Registry
	log         zerolog.Logger
}

// New creates a Server. The api may be nil when no credentials are
// configured; /api/execute then answers with an error.
func New(config Config, transformer Transformer, api Pusher, registry *codelists.Registry, log zerolog.Logger) *Server {
	return &Server{
		config:      config,
		transformer: transformer,
		api:         api,
		registry:    registry,
		log:         log,
	}
}

// Router returns the front end's handler with CORS enabled for the GUI.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/api/transform", s.handleTransform).Methods("POST")
	r.HandleFunc("/api/execute", s.handleExecute).Methods("POST")
	r.HandleFunc("/api/download/{path:.*}", s.handleDownload).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(r)
}

// Start creates the working folders and serves until the listener fails.
func (s *Server) Start() error {
	for _, dir := range []string{s.config.UploadFolder, s.config.OutputFolder} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	addr := ":" + s.config.Port
	s.log.Info().Str("addr", addr).Msg("web front end listening")
	return http.ListenAndServe(addr, s.Router())
}
