package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"searchgate/internal/handler/http/respond"
	"searchgate/internal/infra/report"
)

// maxReportDocs caps how many documents one synthesis may consume.
const maxReportDocs = 20

// ReportRequest is the POST /api/report body.
type ReportRequest struct {
	Question  string            `json:"question"`
	Documents []report.Document `json:"documents"`
}

// ReportResponse is the synthesis result.
type ReportResponse struct {
	Report string `json:"report"`
}

// ReportHandler serves POST /api/report.
type ReportHandler struct {
	Svc report.Synthesizer
}

// ServeHTTP synthesizes a prose report from search result documents.
func (h ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest,
			fmt.Errorf("invalid request body: %w", err))
		return
	}

	if req.Question == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("question is required"))
		return
	}
	if len(req.Documents) == 0 {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("at least one document is required"))
		return
	}
	if len(req.Documents) > maxReportDocs {
		respond.SafeError(w, http.StatusBadRequest,
			fmt.Errorf("invalid request: at most %d documents allowed", maxReportDocs))
		return
	}

	result, err := h.Svc.Synthesize(r.Context(), req.Question, req.Documents)
	if err != nil {
		respond.Error(w, http.StatusBadGateway,
			errors.New("report synthesis failed"))
		return
	}

	respond.JSON(w, http.StatusOK, ReportResponse{Report: result})
}
