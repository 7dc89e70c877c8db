package notes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/logger"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/common/models"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/evidence"
	"github.com/jmartinsamson-cmd/CardiologySuiteApp-vNext-sub001/pkg/heuristics"
)

type HTTPHandler struct {
	service *Service
	formats *heuristics.Store
	maxBody int64
}

func NewHTTPHandler(service *Service, formats *heuristics.Store, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, formats: formats, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/notes/parse", h.handleParse).Methods(http.MethodPost)
	router.HandleFunc("/notes/batch", h.handleBatch).Methods(http.MethodPost)
	router.HandleFunc("/notes/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/evidence", h.handleEvidence).Methods(http.MethodPost)

	if h.formats == nil {
		return
	}
	router.HandleFunc("/formats", h.handleListFormats).Methods(http.MethodGet)
	router.HandleFunc("/formats/export", h.handleExport).Methods(http.MethodGet)
	router.HandleFunc("/formats/import", h.handleImport).Methods(http.MethodPost)
	router.HandleFunc("/formats/{label}", h.handleGetFormat).Methods(http.MethodGet)
	router.HandleFunc("/formats/{label}", h.handleSaveFormat).Methods(http.MethodPut)
	router.HandleFunc("/formats/{label}", h.handleDeleteFormat).Methods(http.MethodDelete)
}

type evidenceRequest struct {
	Text   string               `json:"text,omitempty"`
	Format string               `json:"format,omitempty"`
	Record *models.ParsedRecord `json:"record,omitempty"`
}

type evidenceResponse struct {
	Plan *evidence.Plan `json:"plan"`
	Text string         `json:"text"`
}

func (h *HTTPHandler) limit(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
}

func (h *HTTPHandler) handleParse(w http.ResponseWriter, r *http.Request) {
	h.limit(w, r)

	var req models.ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L().WithError(err).Warn("invalid parse payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Process(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "failed to parse note")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleBatch(w http.ResponseWriter, r *http.Request) {
	h.limit(w, r)

	var req models.BatchParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L().WithError(err).Warn("invalid batch payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Notes) == 0 {
		http.Error(w, "notes required", http.StatusBadRequest)
		return
	}

	results, err := h.service.Batch(r.Context(), req.Notes)
	if err != nil {
		writeServiceError(w, err, "failed to parse batch")
		return
	}
	writeJSON(w, http.StatusOK, models.BatchParseResponse{Results: results})
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, "failed to fetch parsed note")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleEvidence(w http.ResponseWriter, r *http.Request) {
	h.limit(w, r)

	var req evidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var record models.ParsedRecord
	if req.Record != nil {
		record = *req.Record
	} else {
		parsed, err := h.service.Parse(r.Context(), req.Text, req.Format)
		if err != nil {
			writeServiceError(w, err, "failed to parse note for evidence")
			return
		}
		record = parsed
	}

	plan, err := h.service.Evidence(record)
	if err != nil {
		if errors.Is(err, ErrEvidenceDisabled) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeServiceError(w, err, "failed to build evidence plan")
		return
	}
	writeJSON(w, http.StatusOK, evidenceResponse{Plan: plan, Text: plan.Text()})
}

func (h *HTTPHandler) handleListFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.formats.ListFormats())
}

func (h *HTTPHandler) handleGetFormat(w http.ResponseWriter, r *http.Request) {
	def, ok := h.formats.GetFormat(mux.Vars(r)["label"])
	if !ok {
		http.Error(w, "format not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *HTTPHandler) handleSaveFormat(w http.ResponseWriter, r *http.Request) {
	h.limit(w, r)

	var hints models.SectionHints
	if err := json.NewDecoder(r.Body).Decode(&hints); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	def, err := h.formats.SaveFormat(r.Context(), mux.Vars(r)["label"], hints)
	if err != nil {
		if errors.Is(err, heuristics.ErrInvalidLabel) || errors.Is(err, heuristics.ErrNoSections) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L().WithError(err).Error("failed to save format")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *HTTPHandler) handleDeleteFormat(w http.ResponseWriter, r *http.Request) {
	if err := h.formats.DeleteFormat(r.Context(), mux.Vars(r)["label"]); err != nil {
		if errors.Is(err, heuristics.ErrFormatNotFound) {
			http.Error(w, "format not found", http.StatusNotFound)
			return
		}
		logger.L().WithError(err).Error("failed to delete format")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.formats.ExportJSON()
	if err != nil {
		logger.L().WithError(err).Error("failed to export formats")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="formats.json"`)
	w.Write(data)
}

func (h *HTTPHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	h.limit(w, r)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	n, err := h.formats.Import(r.Context(), data)
	if err != nil {
		if errors.Is(err, heuristics.ErrMalformed) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L().WithError(err).Error("failed to import formats")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func writeServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "parsed note not found", http.StatusNotFound)
	default:
		logger.L().WithError(err).Error(msg)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
