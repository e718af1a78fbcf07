package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/crimenet/report-service/internal/apperr"
	"github.com/crimenet/report-service/internal/model"
)

// Memory implements Store in process memory. It backs the memory storage
// backend and the test suites, and honors the same contracts as Postgres.
type Memory struct {
	mu          sync.RWMutex
	reports     map[string]*model.Report
	timelines   map[string][]*model.TimelineEntry // reportID -> entries in insertion order
	tips        map[string]*model.Tip
	tipOrder    []string
	attachments map[string][]*model.Attachment // reportID -> metadata in insertion order
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		reports:     make(map[string]*model.Report),
		timelines:   make(map[string][]*model.TimelineEntry),
		tips:        make(map[string]*model.Tip),
		attachments: make(map[string][]*model.Attachment),
	}
}

// CreateReport inserts a new report, assigning a report ID if absent.
func (m *Memory) CreateReport(ctx context.Context, report *model.Report) error {
	if err := validateReport(report); err != nil {
		return err
	}
	if report.ReportID == "" {
		report.ReportID = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.ReportID] = copyReport(report)
	return nil
}

// GetReport retrieves a report by ID.
func (m *Memory) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report, ok := m.reports[reportID]
	if !ok {
		return nil, apperr.NotFound("report").WithDetail("reportId", reportID)
	}
	return copyReport(report), nil
}

// PutReport fully replaces the stored record.
func (m *Memory) PutReport(ctx context.Context, report *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[report.ReportID]; !ok {
		return apperr.NotFound("report").WithDetail("reportId", report.ReportID)
	}
	m.reports[report.ReportID] = copyReport(report)
	return nil
}

// ApplyTransition replaces the report and appends the ledger entry under a
// single lock hold: either both are visible afterwards or neither is.
func (m *Memory) ApplyTransition(ctx context.Context, report *model.Report, entry *model.TimelineEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[report.ReportID]; !ok {
		return apperr.NotFound("report").WithDetail("reportId", report.ReportID)
	}
	m.reports[report.ReportID] = copyReport(report)

	cp := *entry
	cp.ReportID = report.ReportID
	m.timelines[report.ReportID] = append(m.timelines[report.ReportID], &cp)
	return nil
}

// ListBySubmitter returns all reports filed by userID, in store order.
func (m *Memory) ListBySubmitter(ctx context.Context, userID string) ([]*model.Report, error) {
	return m.list(func(r *model.Report) bool { return r.SubmitterID == userID })
}

// ListByStatus returns all reports in the given status, in store order.
func (m *Memory) ListByStatus(ctx context.Context, status model.ReportStatus) ([]*model.Report, error) {
	return m.list(func(r *model.Report) bool { return r.Status == status })
}

// ListByOfficer returns all reports assigned to officerID, in store order.
func (m *Memory) ListByOfficer(ctx context.Context, officerID string) ([]*model.Report, error) {
	return m.list(func(r *model.Report) bool { return r.AssignedOfficerID == officerID })
}

// ListAll returns every report, in store order.
func (m *Memory) ListAll(ctx context.Context) ([]*model.Report, error) {
	return m.list(func(*model.Report) bool { return true })
}

func (m *Memory) list(match func(*model.Report) bool) ([]*model.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*model.Report
	for _, r := range m.reports {
		if match(r) {
			out = append(out, copyReport(r))
		}
	}
	return out, nil
}

// copyReport clones a record including its pointer fields, so neither side
// can mutate the other through a shared pointer.
func copyReport(r *model.Report) *model.Report {
	cp := *r
	if r.Latitude != nil {
		v := *r.Latitude
		cp.Latitude = &v
	}
	if r.Longitude != nil {
		v := *r.Longitude
		cp.Longitude = &v
	}
	if r.IncidentAt != nil {
		t := *r.IncidentAt
		cp.IncidentAt = &t
	}
	return &cp
}

// Summary computes aggregate statistics over the report store.
func (m *Memory) Summary(ctx context.Context) (*model.ReportSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := &model.ReportSummary{
		ByStatus:   make(map[model.ReportStatus]int64),
		ByCategory: make(map[string]int64),
	}
	for _, r := range m.reports {
		summary.TotalReports++
		summary.ByStatus[r.Status]++
		summary.ByCategory[r.Category]++
	}
	summary.PendingReports = summary.ByStatus[model.StatusPending]
	summary.UnderInvestigation = summary.ByStatus[model.StatusUnderInvestigation]
	summary.ClosedReports = summary.ByStatus[model.StatusClosed]
	return summary, nil
}

// Append writes a ledger entry for reportID. Fails with NotFound if the
// parent report does not exist.
func (m *Memory) Append(ctx context.Context, reportID string, entry *model.TimelineEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[reportID]; !ok {
		return apperr.NotFound("report").WithDetail("reportId", reportID)
	}
	cp := *entry
	cp.ReportID = reportID
	m.timelines[reportID] = append(m.timelines[reportID], &cp)
	return nil
}

// List returns the ledger for reportID ascending by created_at, ties broken
// by insertion order.
func (m *Memory) List(ctx context.Context, reportID string) ([]*model.TimelineEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.timelines[reportID]
	out := make([]*model.TimelineEntry, len(entries))
	for i, e := range entries {
		cp := *e
		out[i] = &cp
	}
	// SliceStable keeps insertion order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateTip inserts an anonymous tip.
func (m *Memory) CreateTip(ctx context.Context, tip *model.Tip) error {
	if tip.TipID == "" {
		tip.TipID = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tip
	m.tips[tip.TipID] = &cp
	m.tipOrder = append(m.tipOrder, tip.TipID)
	return nil
}

// GetTip retrieves a tip by ID.
func (m *Memory) GetTip(ctx context.Context, tipID string) (*model.Tip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tip, ok := m.tips[tipID]
	if !ok {
		return nil, apperr.NotFound("tip").WithDetail("tipId", tipID)
	}
	cp := *tip
	return &cp, nil
}

// ListTips returns all tips, newest first.
func (m *Memory) ListTips(ctx context.Context) ([]*model.Tip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Tip, 0, len(m.tipOrder))
	for i := len(m.tipOrder) - 1; i >= 0; i-- {
		cp := *m.tips[m.tipOrder[i]]
		out = append(out, &cp)
	}
	return out, nil
}

// AddAttachment records attachment metadata for a report.
func (m *Memory) AddAttachment(ctx context.Context, att *model.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[att.ReportID]; !ok {
		return apperr.NotFound("report").WithDetail("reportId", att.ReportID)
	}
	cp := *att
	m.attachments[att.ReportID] = append(m.attachments[att.ReportID], &cp)
	return nil
}

// GetAttachment retrieves attachment metadata.
func (m *Memory) GetAttachment(ctx context.Context, reportID, attachmentID string) (*model.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, att := range m.attachments[reportID] {
		if att.AttachmentID == attachmentID {
			cp := *att
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("attachment").WithDetail("attachmentId", attachmentID)
}

// ListAttachments returns attachment metadata for a report.
func (m *Memory) ListAttachments(ctx context.Context, reportID string) ([]*model.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	atts := m.attachments[reportID]
	out := make([]*model.Attachment, len(atts))
	for i, att := range atts {
		cp := *att
		out[i] = &cp
	}
	return out, nil
}
