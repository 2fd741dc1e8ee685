// backend/src/handlers/upload_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/username/wheelfolio/backend/src/config"
	"github.com/username/wheelfolio/backend/src/logger"
	"github.com/username/wheelfolio/backend/src/security/validation"
	"github.com/username/wheelfolio/backend/src/services"
	"github.com/username/wheelfolio/backend/src/utils"
)

type UploadHandler struct {
	analysisService services.AnalysisService
}

func NewUploadHandler(service services.AnalysisService) *UploadHandler {
	return &UploadHandler{
		analysisService: service,
	}
}

type skippedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type uploadResponse struct {
	Processed []services.IngestResult `json:"processed"`
	Imported  []string                `json:"imported"`
	Skipped   []skippedFile           `json:"skipped"`
}

// HandleUpload accepts a batch of trade confirmation XML documents and
// saved analysis JSON snapshots under the 'files' multipart field. Each
// file succeeds or fails on its own; one malformed document never blocks
// the rest of the batch.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to process upload or file is too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	source := r.FormValue("source")
	if source == "" {
		source = "ibkr"
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		ctxLogger.Warn("Upload request contained no files")
		utils.SendJSONError(w, "No files provided. Ensure the 'files' field is used.", http.StatusBadRequest)
		return
	}
	ctxLogger.Info("Processing upload batch", "source", source, "files", len(fileHeaders))

	response := uploadResponse{
		Processed: []services.IngestResult{},
		Imported:  []string{},
		Skipped:   []skippedFile{},
	}

	for _, fileHeader := range fileHeaders {
		result, reason := h.processOne(fileHeader, source)
		if reason != "" {
			ctxLogger.Warn("Skipping file in upload batch", "filename", fileHeader.Filename, "reason", reason)
			response.Skipped = append(response.Skipped, skippedFile{Filename: fileHeader.Filename, Reason: reason})
			continue
		}
		if result != nil {
			response.Processed = append(response.Processed, *result)
		} else {
			response.Imported = append(response.Imported, fileHeader.Filename)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		ctxLogger.Error("Error encoding JSON response for upload result", "error", err)
	}
}

// processOne validates and ingests a single file. It returns a nil result
// for snapshot imports and a non-empty reason when the file was skipped.
func (h *UploadHandler) processOne(fileHeader *multipart.FileHeader, source string) (*services.IngestResult, string) {
	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		return nil, fmt.Sprintf("file too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Sprintf("failed to open uploaded file: %v", err)
	}
	defer file.Close()

	clientContentType := fileHeader.Header.Get("Content-Type")
	if clientContentType != "" {
		if err := validation.ValidateClientContentType(clientContentType); err != nil {
			return nil, err.Error()
		}
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		return nil, err.Error()
	}

	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".json") {
		if _, err := h.analysisService.ImportSnapshot(file, fileHeader.Filename); err != nil {
			if errors.Is(err, services.ErrImportFailed) {
				return nil, err.Error()
			}
			return nil, fmt.Sprintf("import failed: %v", err)
		}
		return nil, ""
	}

	result, err := h.analysisService.IngestDocument(file, source, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			return nil, err.Error()
		}
		return nil, fmt.Sprintf("ingest failed: %v", err)
	}
	return result, ""
}
