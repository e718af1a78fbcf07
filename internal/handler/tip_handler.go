package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/crimenet/report-service/internal/apperr"
	"github.com/crimenet/report-service/internal/auth"
	"github.com/crimenet/report-service/internal/model"
	"github.com/crimenet/report-service/internal/store"
)

// TipHandler handles anonymous tip submission and review. Submission is
// deliberately open: tips carry no identity at all.
type TipHandler struct {
	tips store.TipStore
}

// NewTipHandler creates a new tip handler.
func NewTipHandler(tips store.TipStore) *TipHandler {
	return &TipHandler{tips: tips}
}

// RegisterRoutes registers tip routes.
func (h *TipHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tips", h.CreateTip).Methods("POST")
	r.HandleFunc("/tips", h.ListTips).Methods("GET")
	r.HandleFunc("/tips/{id}", h.GetTip).Methods("GET")
}

// CreateTip accepts an anonymous tip. No authentication.
func (h *TipHandler) CreateTip(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperr.BadRequest("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		respondError(w, apperr.Validation("body is required"))
		return
	}

	tip := &model.Tip{
		TipID:     uuid.New().String(),
		Subject:   req.Subject,
		Body:      req.Body,
		Category:  req.Category,
		Location:  req.Location,
		CreatedAt: time.Now(),
	}
	if err := h.tips.CreateTip(r.Context(), tip); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tip)
}

// ListTips returns all tips. POLICE/ADMIN only.
func (h *TipHandler) ListTips(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpListTips); err != nil {
		respondError(w, err)
		return
	}

	tips, err := h.tips.ListTips(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tips)
}

// GetTip retrieves a tip by ID. POLICE/ADMIN only.
func (h *TipHandler) GetTip(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpListTips); err != nil {
		respondError(w, err)
		return
	}

	tip, err := h.tips.GetTip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tip)
}
