package store

import (
	"context"
	"testing"
	"time"

	"github.com/crimenet/report-service/internal/apperr"
	"github.com/crimenet/report-service/internal/model"
)

func testReport(id, submitter string) *model.Report {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &model.Report{
		ReportID:    id,
		SubmitterID: submitter,
		Title:       "Broken window",
		Description: "Ground floor window smashed",
		Category:    "VANDALISM",
		Priority:    "MEDIUM",
		Location:    "Oak Ave 12",
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestMemoryCreateAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	r := testReport("", "user-1")
	if err := m.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if r.ReportID == "" {
		t.Fatal("report ID not assigned")
	}

	got, err := m.GetReport(ctx, r.ReportID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Title != r.Title || got.SubmitterID != r.SubmitterID {
		t.Errorf("got %+v, want %+v", got, r)
	}

	// Reads return copies; mutating the result must not touch the store.
	got.Title = "mutated"
	again, _ := m.GetReport(ctx, r.ReportID)
	if again.Title != "Broken window" {
		t.Error("store record was mutated through a read result")
	}
}

func TestMemoryCreateValidation(t *testing.T) {
	m := NewMemory()
	r := testReport("r-1", "user-1")
	r.Title = "  "

	err := m.CreateReport(context.Background(), r)
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()

	_, err := m.GetReport(context.Background(), "nope")
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestMemoryPutReport(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	r := testReport("r-1", "user-1")
	if err := m.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	r.Status = model.StatusClosed
	r.AssignedOfficerID = "officer-3"
	if err := m.PutReport(ctx, r); err != nil {
		t.Fatalf("PutReport: %v", err)
	}

	got, _ := m.GetReport(ctx, "r-1")
	if got.Status != model.StatusClosed || got.AssignedOfficerID != "officer-3" {
		t.Errorf("got %+v", got)
	}

	missing := testReport("r-missing", "user-1")
	if err := m.PutReport(ctx, missing); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("PutReport missing err = %v, want not found", err)
	}
}

func TestMemoryApplyTransition(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	r := testReport("r-1", "user-1")
	if err := m.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	r.Status = model.StatusClosed
	entry := &model.TimelineEntry{
		TimelineID:  "t-1",
		StatusFrom:  model.StatusPending,
		StatusTo:    model.StatusClosed,
		ActorUserID: "officer-1",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := m.ApplyTransition(ctx, r, entry); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}

	got, _ := m.GetReport(ctx, "r-1")
	if got.Status != model.StatusClosed {
		t.Errorf("status = %q, want CLOSED", got.Status)
	}
	entries, _ := m.List(ctx, "r-1")
	if len(entries) != 1 || entries[0].TimelineID != "t-1" {
		t.Errorf("timeline = %v", entries)
	}
}

func TestMemoryApplyTransitionMissingReport(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	r := testReport("r-missing", "user-1")
	entry := &model.TimelineEntry{TimelineID: "t-1"}

	err := m.ApplyTransition(ctx, r, entry)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	// Neither side of the failed transition is visible.
	if _, err := m.GetReport(ctx, "r-missing"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Error("report appeared despite failed transition")
	}
	entries, _ := m.List(ctx, "r-missing")
	if len(entries) != 0 {
		t.Errorf("timeline length = %d, want 0", len(entries))
	}
}

func TestMemoryCopiesPointerFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	const wantLat = 40.7128
	lat, lng := wantLat, -74.0060
	incident := time.Date(2025, 5, 30, 21, 0, 0, 0, time.UTC)
	r := testReport("r-1", "user-1")
	r.Latitude = &lat
	r.Longitude = &lng
	r.IncidentAt = &incident
	if err := m.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	// Mutating through the caller's pointer must not touch the store.
	*r.Latitude = 0

	got, _ := m.GetReport(ctx, "r-1")
	if *got.Latitude != wantLat {
		t.Errorf("stored latitude = %v, want %v", *got.Latitude, wantLat)
	}

	// And mutating through a read result must not either.
	*got.Latitude = 99
	*got.IncidentAt = got.IncidentAt.Add(time.Hour)

	again, _ := m.GetReport(ctx, "r-1")
	if *again.Latitude != wantLat {
		t.Errorf("latitude = %v after read-side mutation, want %v", *again.Latitude, wantLat)
	}
	if !again.IncidentAt.Equal(incident) {
		t.Errorf("incidentAt = %v after read-side mutation, want %v", again.IncidentAt, incident)
	}
}

func TestMemoryListFilters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	a := testReport("r-a", "user-1")
	b := testReport("r-b", "user-1")
	b.Status = model.StatusClosed
	b.AssignedOfficerID = "officer-3"
	c := testReport("r-c", "user-2")
	c.AssignedOfficerID = "officer-3"
	for _, r := range []*model.Report{a, b, c} {
		if err := m.CreateReport(ctx, r); err != nil {
			t.Fatalf("seed %s: %v", r.ReportID, err)
		}
	}

	bySubmitter, _ := m.ListBySubmitter(ctx, "user-1")
	if len(bySubmitter) != 2 {
		t.Errorf("ListBySubmitter = %d reports, want 2", len(bySubmitter))
	}
	byStatus, _ := m.ListByStatus(ctx, model.StatusClosed)
	if len(byStatus) != 1 || byStatus[0].ReportID != "r-b" {
		t.Errorf("ListByStatus = %v", byStatus)
	}
	byOfficer, _ := m.ListByOfficer(ctx, "officer-3")
	if len(byOfficer) != 2 {
		t.Errorf("ListByOfficer = %d reports, want 2", len(byOfficer))
	}
	all, _ := m.ListAll(ctx)
	if len(all) != 3 {
		t.Errorf("ListAll = %d reports, want 3", len(all))
	}
	none, _ := m.ListBySubmitter(ctx, "user-99")
	if len(none) != 0 {
		t.Errorf("ListBySubmitter for unknown user = %d reports, want 0", len(none))
	}
}

func TestMemorySummary(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	a := testReport("r-a", "user-1")
	b := testReport("r-b", "user-1")
	b.Status = model.StatusUnderInvestigation
	b.Category = "THEFT"
	c := testReport("r-c", "user-2")
	c.Status = model.StatusClosed
	for _, r := range []*model.Report{a, b, c} {
		if err := m.CreateReport(ctx, r); err != nil {
			t.Fatalf("seed %s: %v", r.ReportID, err)
		}
	}

	s, err := m.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.TotalReports != 3 || s.PendingReports != 1 || s.UnderInvestigation != 1 || s.ClosedReports != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.ByCategory["VANDALISM"] != 2 || s.ByCategory["THEFT"] != 1 {
		t.Errorf("byCategory = %v", s.ByCategory)
	}
}

func TestMemoryTimeline(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	r := testReport("r-1", "user-1")
	if err := m.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []*model.TimelineEntry{
		{TimelineID: "t-1", StatusFrom: model.StatusPending, StatusTo: model.StatusPending,
			Note: "Officer assigned: officer-1", ActorUserID: "admin-1", CreatedAt: base},
		{TimelineID: "t-2", StatusFrom: model.StatusPending, StatusTo: model.StatusUnderInvestigation,
			ActorUserID: "officer-1", CreatedAt: base},
		{TimelineID: "t-3", StatusFrom: model.StatusUnderInvestigation, StatusTo: model.StatusClosed,
			ActorUserID: "officer-1", CreatedAt: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := m.Append(ctx, "r-1", e); err != nil {
			t.Fatalf("Append %s: %v", e.TimelineID, err)
		}
	}

	got, err := m.List(ctx, "r-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("list length = %d, want 3", len(got))
	}
	// Equal timestamps keep insertion order.
	for i, id := range []string{"t-1", "t-2", "t-3"} {
		if got[i].TimelineID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].TimelineID, id)
		}
	}
	for _, e := range got {
		if e.ReportID != "r-1" {
			t.Errorf("entry %s carries report ID %q", e.TimelineID, e.ReportID)
		}
	}
}

func TestMemoryAppendOrphan(t *testing.T) {
	m := NewMemory()

	err := m.Append(context.Background(), "no-such-report", &model.TimelineEntry{TimelineID: "t-1"})
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestMemoryTips(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := &model.Tip{Subject: "Suspicious van", Body: "Parked for days", Location: "Elm St"}
	second := &model.Tip{Subject: "Loud noises", Body: "Every night", Location: "Oak Ave"}
	for _, tip := range []*model.Tip{first, second} {
		if err := m.CreateTip(ctx, tip); err != nil {
			t.Fatalf("CreateTip: %v", err)
		}
	}

	got, err := m.GetTip(ctx, first.TipID)
	if err != nil {
		t.Fatalf("GetTip: %v", err)
	}
	if got.Subject != "Suspicious van" {
		t.Errorf("subject = %q", got.Subject)
	}

	tips, _ := m.ListTips(ctx)
	if len(tips) != 2 {
		t.Fatalf("ListTips = %d tips, want 2", len(tips))
	}
	if tips[0].TipID != second.TipID {
		t.Error("ListTips is not newest first")
	}

	if _, err := m.GetTip(ctx, "nope"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("missing tip err = %v, want not found", err)
	}
}

func TestMemoryAttachments(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	r := testReport("r-1", "user-1")
	if err := m.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	att := &model.Attachment{
		AttachmentID: "a-1",
		ReportID:     "r-1",
		FileName:     "photo.jpg",
		ContentType:  "image/jpeg",
		Size:         2048,
		StorageKey:   "r-1/a-1",
		UploadedBy:   "user-1",
	}
	if err := m.AddAttachment(ctx, att); err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}

	got, err := m.GetAttachment(ctx, "r-1", "a-1")
	if err != nil {
		t.Fatalf("GetAttachment: %v", err)
	}
	if got.FileName != "photo.jpg" || got.StorageKey != "r-1/a-1" {
		t.Errorf("got %+v", got)
	}

	list, _ := m.ListAttachments(ctx, "r-1")
	if len(list) != 1 {
		t.Errorf("ListAttachments = %d, want 1", len(list))
	}

	orphan := &model.Attachment{AttachmentID: "a-2", ReportID: "no-such-report"}
	if err := m.AddAttachment(ctx, orphan); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("orphan attachment err = %v, want not found", err)
	}
	if _, err := m.GetAttachment(ctx, "r-1", "nope"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("missing attachment err = %v, want not found", err)
	}
}
