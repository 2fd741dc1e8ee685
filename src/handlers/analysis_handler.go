// backend/src/handlers/analysis_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/wheelfolio/backend/src/services"
	"github.com/username/wheelfolio/backend/src/utils"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: service,
	}
}

// HandleGetAnalysis serves the full analysis with ETag support so the
// frontend can poll cheaply between uploads.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)
	ctxLogger.Debug("Handling GetAnalysis request with ETag support")

	analysis, err := h.analysisService.GetAnalysis()
	if err != nil {
		ctxLogger.Error("Error computing analysis", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error computing analysis: %v", err), http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(analysis)
	if etagErr != nil {
		ctxLogger.Error("Failed to generate ETag for analysis", "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				ctxLogger.Info("ETag match for analysis", "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		if clientETag != "" {
			ctxLogger.Debug("ETag mismatch", "clientETags", clientETag, "serverETag", quotedETag)
		}
	} else {
		ctxLogger.Warn("Proceeding without ETag check due to ETag generation error or empty ETag")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(analysis); err != nil {
		ctxLogger.Error("Error generating JSON response for analysis", "error", err)
	}
}

func (h *AnalysisHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)

	holdings, err := h.analysisService.GetCurrentHoldings()
	if err != nil {
		ctxLogger.Error("Error retrieving current holdings", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving current holdings: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(holdings); err != nil {
		ctxLogger.Error("Error generating JSON response for holdings", "error", err)
	}
}

func (h *AnalysisHandler) HandleGetCycles(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)

	cycles, err := h.analysisService.GetCompletedCycles()
	if err != nil {
		ctxLogger.Error("Error retrieving completed cycles", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving completed cycles: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cycles); err != nil {
		ctxLogger.Error("Error generating JSON response for cycles", "error", err)
	}
}

// HandleExportSnapshot serves the portable JSON envelope used for
// continuation: re-uploading it later restores closed positions that the
// newer trade confirmations no longer cover.
func (h *AnalysisHandler) HandleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)

	export, err := h.analysisService.ExportSnapshot()
	if err != nil {
		ctxLogger.Error("Error building analysis export", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error building analysis export: %v", err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("wheel-strategy-analysis-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		ctxLogger.Error("Error generating JSON export", "error", err)
	}
}

func (h *AnalysisHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)

	data, err := h.analysisService.ExportCyclesCSV()
	if err != nil {
		ctxLogger.Error("Error building CSV export", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error building CSV export: %v", err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("wheel-strategy-performance-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		ctxLogger.Error("Error writing CSV export", "error", err)
	}
}

func (h *AnalysisHandler) HandleExportXML(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)

	data, err := h.analysisService.ExportXML()
	if err != nil {
		ctxLogger.Error("Error building XML export", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error building XML export: %v", err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("wheel-strategy-analysis-%s.xml", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		ctxLogger.Error("Error writing XML export", "error", err)
	}
}

// HandleImportSnapshot accepts a raw JSON snapshot body, as an alternative
// to uploading the .json file through the multipart endpoint.
func (h *AnalysisHandler) HandleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	ctxLogger := loggerFrom(r)

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "imported-analysis.json"
	}

	analysis, err := h.analysisService.ImportSnapshot(r.Body, filename)
	if err != nil {
		if errors.Is(err, services.ErrImportFailed) {
			ctxLogger.Warn("Rejected malformed analysis snapshot", "filename", filename, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		ctxLogger.Error("Error importing analysis snapshot", "filename", filename, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error importing analysis snapshot: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(analysis); err != nil {
		ctxLogger.Error("Error generating JSON response for import", "error", err)
	}
}
