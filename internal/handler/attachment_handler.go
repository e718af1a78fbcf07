package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/crimenet/report-service/internal/apperr"
	"github.com/crimenet/report-service/internal/auth"
	"github.com/crimenet/report-service/internal/blob"
	"github.com/crimenet/report-service/internal/model"
	"github.com/crimenet/report-service/internal/store"
)

// maxAttachmentSize caps uploads at 10MB.
const maxAttachmentSize = 10 << 20

// AttachmentHandler handles report attachment upload and download. Metadata
// goes to the report store, content to the blob store.
type AttachmentHandler struct {
	attachments store.AttachmentStore
	blobs       blob.Store
}

// NewAttachmentHandler creates a new attachment handler.
func NewAttachmentHandler(attachments store.AttachmentStore, blobs blob.Store) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, blobs: blobs}
}

// RegisterRoutes registers attachment routes.
func (h *AttachmentHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/reports/{id}/attachments", h.Upload).Methods("POST")
	r.HandleFunc("/reports/{id}/attachments", h.List).Methods("GET")
	r.HandleFunc("/reports/{id}/attachments/{attachmentId}", h.Download).Methods("GET")
}

// Upload stores an attachment for a report. The request body is the raw
// file content; the file name comes from the X-File-Name header.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, err := authorize(r, auth.OpAddAttachment)
	if err != nil {
		respondError(w, err)
		return
	}

	fileName := r.Header.Get("X-File-Name")
	if fileName == "" {
		respondError(w, apperr.Validation("X-File-Name header is required"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxAttachmentSize+1))
	if err != nil {
		respondError(w, apperr.BadRequest("failed to read request body"))
		return
	}
	if len(data) == 0 {
		respondError(w, apperr.Validation("attachment content is empty"))
		return
	}
	if len(data) > maxAttachmentSize {
		respondError(w, apperr.Validation("attachment exceeds maximum size"))
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	reportID := mux.Vars(r)["id"]
	att := &model.Attachment{
		AttachmentID: uuid.New().String(),
		ReportID:     reportID,
		FileName:     fileName,
		ContentType:  contentType,
		Size:         int64(len(data)),
		UploadedBy:   identity.UserID,
		CreatedAt:    time.Now(),
	}
	att.StorageKey = reportID + "/" + att.AttachmentID

	if err := h.blobs.Put(r.Context(), att.StorageKey, contentType, data); err != nil {
		respondError(w, err)
		return
	}
	if err := h.attachments.AddAttachment(r.Context(), att); err != nil {
		// Metadata write failed; do not leave the orphan blob behind.
		_ = h.blobs.Delete(r.Context(), att.StorageKey)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, att)
}

// List returns attachment metadata for a report.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpGetReport); err != nil {
		respondError(w, err)
		return
	}

	atts, err := h.attachments.ListAttachments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, atts)
}

// Download streams attachment content.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	if _, err := authorize(r, auth.OpGetReport); err != nil {
		respondError(w, err)
		return
	}

	vars := mux.Vars(r)
	att, err := h.attachments.GetAttachment(r.Context(), vars["id"], vars["attachmentId"])
	if err != nil {
		respondError(w, err)
		return
	}

	data, contentType, err := h.blobs.Get(r.Context(), att.StorageKey)
	if err != nil {
		respondError(w, err)
		return
	}
	if contentType == "" {
		contentType = att.ContentType
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+att.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
