package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/crimenet/report-service/internal/apperr"
	"github.com/crimenet/report-service/internal/auth"
	"github.com/crimenet/report-service/internal/lifecycle"
	"github.com/crimenet/report-service/internal/logger"
	"github.com/crimenet/report-service/internal/model"
	"github.com/crimenet/report-service/internal/store"
)

// ReportHandler handles HTTP requests for the report lifecycle.
type ReportHandler struct {
	manager *lifecycle.Manager
	reports store.ReportStore
	log     *logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(manager *lifecycle.Manager, reports store.ReportStore, log *logger.Logger) *ReportHandler {
	return &ReportHandler{manager: manager, reports: reports, log: log}
}

// RegisterRoutes registers report lifecycle routes.
func (h *ReportHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/reports", h.CreateReport).Methods("POST")
	r.HandleFunc("/reports", h.ListAllReports).Methods("GET")
	r.HandleFunc("/reports/user/{userId}", h.ListUserReports).Methods("GET")
	r.HandleFunc("/reports/status/{status}", h.ListReportsByStatus).Methods("GET")
	r.HandleFunc("/reports/officer/{officerId}", h.ListReportsByOfficer).Methods("GET")
	r.HandleFunc("/reports/{id}", h.GetReport).Methods("GET")
	r.HandleFunc("/reports/{id}/assign", h.AssignOfficer).Methods("PUT")
	r.HandleFunc("/reports/{id}/status", h.UpdateStatus).Methods("PUT")
	r.HandleFunc("/reports/{id}/timeline", h.GetTimeline).Methods("GET")
	r.HandleFunc("/analytics/statistics", h.GetStatistics).Methods("GET")
}

// authorize resolves the caller identity and checks the role gate.
func authorize(r *http.Request, op auth.Operation) (auth.Identity, error) {
	identity, err := auth.FromRequest(r)
	if err != nil {
		return auth.Identity{}, err
	}
	if decision := auth.Authorize(identity.Role, op); !decision.Allowed {
		return auth.Identity{}, apperr.Forbidden(decision.Reason)
	}
	return identity, nil
}

// CreateReport files a new report for the caller.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	identity, err := authorize(r, auth.OpCreateReport)
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.BadRequest("invalid request body"))
		return
	}

	// A malformed incidentAt is dropped, not fatal.
	incidentAt, parseErr := lifecycle.ParseIncidentAt(req.IncidentAt)
	if parseErr != nil {
		h.log.Warn("failed to parse incidentAt date", "value", req.IncidentAt)
	}

	report, err := h.manager.CreateReport(r.Context(), &req, incidentAt, identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, report)
}

// GetReport retrieves a report by ID.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpGetReport); err != nil {
		respondError(w, err)
		return
	}

	report, err := h.manager.GetReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ListUserReports returns a submitter's reports, newest first.
func (h *ReportHandler) ListUserReports(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpListOwnReports); err != nil {
		respondError(w, err)
		return
	}

	reports, err := h.manager.ListBySubmitter(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// ListReportsByStatus returns reports in the given status.
func (h *ReportHandler) ListReportsByStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpListByStatus); err != nil {
		respondError(w, err)
		return
	}

	status := model.ReportStatus(mux.Vars(r)["status"])
	reports, err := h.manager.ListByStatus(r.Context(), status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// ListReportsByOfficer returns reports assigned to an officer.
func (h *ReportHandler) ListReportsByOfficer(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpListByOfficer); err != nil {
		respondError(w, err)
		return
	}

	reports, err := h.manager.ListByOfficer(r.Context(), mux.Vars(r)["officerId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// ListAllReports returns every report.
func (h *ReportHandler) ListAllReports(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpListAll); err != nil {
		respondError(w, err)
		return
	}

	reports, err := h.manager.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// AssignOfficer assigns an officer to a report.
func (h *ReportHandler) AssignOfficer(w http.ResponseWriter, r *http.Request) {
	identity, err := authorize(r, auth.OpAssignOfficer)
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.AssignOfficerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.BadRequest("invalid request body"))
		return
	}
	if req.OfficerID == "" {
		respondError(w, apperr.Validation("officerId is required"))
		return
	}

	report, err := h.manager.AssignOfficer(r.Context(), mux.Vars(r)["id"], req.OfficerID, identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// UpdateStatus moves a report to a new status.
func (h *ReportHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := authorize(r, auth.OpUpdateStatus)
	if err != nil {
		respondError(w, err)
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.BadRequest("invalid request body"))
		return
	}

	report, err := h.manager.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status, req.Note, identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetTimeline returns the audit timeline for a report.
func (h *ReportHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpGetTimeline); err != nil {
		respondError(w, err)
		return
	}

	timeline, err := h.manager.GetTimeline(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, timeline)
}

// GetStatistics returns aggregate report statistics.
func (h *ReportHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpViewAnalytics); err != nil {
		respondError(w, err)
		return
	}

	summary, err := h.reports.Summary(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
