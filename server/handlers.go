package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/exp/slices"

	"github.com/ehealth-suisse/i14y-transformer/transform"
)

// allowedUploadExts are the source formats the transformer accepts.
var allowedUploadExts = []string{".csv", ".xml"}

const indexPage = `<!DOCTYPE html>
<html>
<head>
    <title>I14Y Transformer</title>
    <meta charset="UTF-8">
</head>
<body>
    <h1>I14Y Transformer Backend Running</h1>
    <p>The backend is running. Please use the frontend HTML file to access the GUI.</p>
    <p>Backend endpoints:</p>
    <ul>
        <li>POST /api/transform - Transform files</li>
        <li>POST /api/execute - Execute API commands</li>
        <li>GET /api/download/{path} - Download produced files</li>
    </ul>
</body>
</html>
`

type transformResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	InputFiles   []string `json:"input_files"`
	OutputFiles  []string `json:"output_files"`
	OutputFolder string   `json:"output_folder"`
}

type executeRequest struct {
	APIMethod     string `json:"apiMethod"`
	FilePath      string `json:"filePath"`
	ConceptID     string `json:"conceptId"`
	DirectoryPath string `json:"directoryPath"`
}

type executeResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Files   []string `json:"files,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

// handleTransform saves the uploaded exports into a per-request workspace,
// runs the transformation and reports the produced artifacts.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	responsibleKey := r.FormValue("responsibleKey")
	deputyKey := r.FormValue("deputyKey")
	validFrom := r.FormValue("dateValidFrom")
	if responsibleKey == "" || deputyKey == "" || validFrom == "" {
		writeJSONError(w, http.StatusBadRequest, "missing required fields: responsibleKey, deputyKey or dateValidFrom")
		return
	}

	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	workspace := filepath.Join(s.config.UploadFolder, uuid.NewString())
	if err := os.MkdirAll(workspace, 0755); err != nil {
		s.log.Error().Err(err).Str("dir", workspace).Msg("failed to create upload workspace")
		writeJSONError(w, http.StatusInternalServerError, "failed to create upload workspace")
		return
	}
	defer os.RemoveAll(workspace)

	var inputFiles []string
	for _, upload := range uploads {
		name := secureFilename(upload.Filename)
		if !slices.Contains(allowedUploadExts, strings.ToLower(filepath.Ext(name))) {
			s.log.Warn().Str("file", upload.Filename).Msg("rejecting upload with unsupported extension")
			continue
		}
		if err := saveUpload(upload, filepath.Join(workspace, name)); err != nil {
			s.log.Error().Err(err).Str("file", name).Msg("failed to save upload")
			writeJSONError(w, http.StatusInternalServerError, "failed to save uploaded files")
			return
		}
		inputFiles = append(inputFiles, name)
	}
	if len(inputFiles) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no valid files uploaded (only CSV and XML are allowed)")
		return
	}

	params := transform.Params{
		ResponsibleKey: responsibleKey,
		DeputyKey:      deputyKey,
		ValidFrom:      validFrom,
		Version:        r.FormValue("version"),
		NewConcept:     r.FormValue("createNew") == "true",
	}
	results, err := s.transformer.TransformFolder(r.Context(), workspace, s.config.OutputFolder, params)
	if err != nil {
		s.log.Error().Err(err).Msg("transformation failed")
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("transformation failed: %v", err))
		return
	}

	outputFiles := make([]string, 0, len(results))
	for _, result := range results {
		outputFiles = append(outputFiles, result.OutputName)
	}
	writeJSONResponse(w, http.StatusOK, transformResponse{
		Success:      true,
		Message:      "files transformed successfully",
		InputFiles:   inputFiles,
		OutputFiles:  outputFiles,
		OutputFolder: s.config.OutputFolder,
	})
}

// handleExecute relays a GUI command to the API client, dispatching on the
// method flag carried in the request body.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.APIMethod == "" {
		writeJSONError(w, http.StatusBadRequest, "no API method specified")
		return
	}
	if s.api == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "no API credentials configured")
		return
	}

	ctx := r.Context()
	var (
		files []string
		err   error
	)
	switch req.APIMethod {
	case "-pc":
		if req.FilePath == "" {
			writeJSONError(w, http.StatusBadRequest, "method -pc requires filePath")
			return
		}
		err = s.api.CreateConcept(ctx, req.FilePath)
	case "-pmc":
		if req.DirectoryPath == "" {
			writeJSONError(w, http.StatusBadRequest, "method -pmc requires directoryPath")
			return
		}
		files, err = s.api.CreateConceptFolder(ctx, req.DirectoryPath)
	case "-pcl":
		if req.FilePath == "" || req.ConceptID == "" {
			writeJSONError(w, http.StatusBadRequest, "method -pcl requires filePath and conceptId")
			return
		}
		err = s.api.ImportCodeListEntries(ctx, req.FilePath, req.ConceptID)
	case "-ucl":
		if req.FilePath == "" || req.ConceptID == "" {
			writeJSONError(w, http.StatusBadRequest, "method -ucl requires filePath and conceptId")
			return
		}
		err = s.api.ReplaceCodeListEntries(ctx, req.FilePath, req.ConceptID)
	case "-pmcl":
		if req.DirectoryPath == "" {
			writeJSONError(w, http.StatusBadRequest, "method -pmcl requires directoryPath")
			return
		}
		files, err = s.api.ImportCodelistFolder(ctx, req.DirectoryPath, s.registry)
	case "-dcl":
		if req.ConceptID == "" {
			writeJSONError(w, http.StatusBadRequest, "method -dcl requires conceptId")
			return
		}
		err = s.api.DeleteCodeListEntries(ctx, req.ConceptID)
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown API method %q", req.APIMethod))
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("method", req.APIMethod).Msg("API command failed")
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("API command %s failed: %v", req.APIMethod, err))
		return
	}
	writeJSONResponse(w, http.StatusOK, executeResponse{
		Success: true,
		Message: fmt.Sprintf("API command %s executed successfully", req.APIMethod),
		Files:   files,
	})
}

// handleDownload serves a produced artifact from the output folder. Paths
// escaping the folder are rejected.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	requested := filepath.Clean(mux.Vars(r)["path"])
	if filepath.IsAbs(requested) || requested == ".." || strings.HasPrefix(requested, ".."+string(filepath.Separator)) {
		writeJSONError(w, http.StatusForbidden, "invalid file path")
		return
	}
	full := filepath.Join(s.config.OutputFolder, requested)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		writeJSONError(w, http.StatusNotFound, "file not found")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(full)))
	http.ServeFile(w, r, full)
}

// secureFilename strips any directory part from a client-provided name.
func secureFilename(filename string) string {
	return path.Base(strings.ReplaceAll(filename, "\\", "/"))
}

func saveUpload(header *multipart.FileHeader, dst string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, src)
	return err
}

func writeJSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSONResponse(w, status, errorResponse{Success: false, Error: msg})
}
