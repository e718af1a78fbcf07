package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/crimenet/report-service/internal/auth"
	"github.com/crimenet/report-service/internal/model"
)

func uploadAttachment(t *testing.T, router *mux.Router, reportID, fileName string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", "/reports/"+reportID+"/attachments", bytes.NewReader(data))
	req.Header.Set(auth.HeaderUserID, "citizen-1")
	req.Header.Set(auth.HeaderRole, "CITIZEN")
	if fileName != "" {
		req.Header.Set("X-File-Name", fileName)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndDownloadAttachment(t *testing.T) {
	router := newTestRouter(t)
	report := createTestReport(t, router, "citizen-1")

	content := []byte("jpeg bytes here")
	rec := uploadAttachment(t, router, report.ReportID, "photo.jpg", content)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	var att model.Attachment
	decodeBody(t, rec, &att)
	if att.AttachmentID == "" {
		t.Fatal("attachment ID not assigned")
	}
	if att.FileName != "photo.jpg" || att.Size != int64(len(content)) {
		t.Errorf("attachment = %+v", att)
	}

	rec = doRequest(t, router, "GET", "/reports/"+report.ReportID+"/attachments", "citizen-1", "CITIZEN", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []*model.Attachment
	decodeBody(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("got %d attachments, want 1", len(list))
	}

	rec = doRequest(t, router, "GET", "/reports/"+report.ReportID+"/attachments/"+att.AttachmentID,
		"citizen-1", "CITIZEN", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("downloaded content differs from upload")
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("content type = %q", got)
	}
}

func TestUploadAttachmentErrors(t *testing.T) {
	router := newTestRouter(t)
	report := createTestReport(t, router, "citizen-1")

	t.Run("missing file name", func(t *testing.T) {
		rec := uploadAttachment(t, router, report.ReportID, "", []byte("data"))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown report", func(t *testing.T) {
		rec := uploadAttachment(t, router, "no-such-report", "photo.jpg", []byte("data"))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		rec := uploadAttachment(t, router, report.ReportID, "big.bin", make([]byte, maxAttachmentSize+1))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing attachment", func(t *testing.T) {
		rec := doRequest(t, router, "GET", "/reports/"+report.ReportID+"/attachments/nope",
			"citizen-1", "CITIZEN", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
