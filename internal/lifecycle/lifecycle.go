// Package lifecycle implements the report lifecycle manager: role-gated,
// ledger-coupled state transitions over the report store. Every accepted
// mutation of status or assignment produces exactly one timeline entry.
package lifecycle

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/crimenet/report-service/internal/apperr"
	"github.com/crimenet/report-service/internal/events"
	"github.com/crimenet/report-service/internal/logger"
	"github.com/crimenet/report-service/internal/model"
	"github.com/crimenet/report-service/internal/store"
)

// Manager validates and applies report transitions. All collaborators are
// passed in explicitly; there is no ambient global state, and the clock is
// injected so tests stay deterministic.
type Manager struct {
	st          store.LifecycleStore
	publisher   events.Publisher
	log         *logger.Logger
	clock       func() time.Time
	caseNumbers *CaseNumberGenerator
}

// NewManager creates a lifecycle manager over the given store.
func NewManager(st store.LifecycleStore, publisher events.Publisher, log *logger.Logger) *Manager {
	if publisher == nil {
		publisher = events.Nop{}
	}
	m := &Manager{
		st:        st,
		publisher: publisher,
		log:       log,
		clock:     time.Now,
	}
	m.caseNumbers = NewCaseNumberGenerator(m.clock)
	return m
}

// WithClock replaces the manager's clock. Intended for tests.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	m.caseNumbers = NewCaseNumberGenerator(clock)
	return m
}

// CreateReport files a new report for actorID. The report starts PENDING
// with a fresh case number and an empty timeline. IncidentAt is optional;
// the transport layer has already dropped malformed values.
func (m *Manager) CreateReport(ctx context.Context, req *model.CreateReportRequest, incidentAt *time.Time, actorID string) (*model.Report, error) {
	now := m.clock()
	report := &model.Report{
		ReportID:    uuid.New().String(),
		SubmitterID: actorID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IncidentAt:  incidentAt,
		CaseNumber:  m.caseNumbers.Next(),
		IsAnonymous: req.IsAnonymous,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.st.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	m.publish(ctx, events.Event{
		Type:       events.TypeReportCreated,
		ReportID:   report.ReportID,
		CaseNumber: report.CaseNumber,
		Status:     report.Status,
		ActorID:    actorID,
		OccurredAt: now,
	})

	return report, nil
}

// GetReport retrieves a report by ID.
func (m *Manager) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	return m.st.GetReport(ctx, reportID)
}

// AssignOfficer sets the assigned officer on a report and appends a ledger
// entry whose statusFrom and statusTo both carry the current status.
func (m *Manager) AssignOfficer(ctx context.Context, reportID, officerID, actorID string) (*model.Report, error) {
	report, err := m.st.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	now := m.clock()
	report.AssignedOfficerID = officerID
	report.UpdatedAt = now

	entry := &model.TimelineEntry{
		TimelineID:  uuid.New().String(),
		StatusFrom:  report.Status,
		StatusTo:    report.Status,
		Note:        "Officer assigned: " + officerID,
		ActorUserID: actorID,
		CreatedAt:   now,
	}
	if err := m.applyTransition(ctx, report, entry); err != nil {
		return nil, err
	}

	m.publish(ctx, events.Event{
		Type:       events.TypeReportAssigned,
		ReportID:   report.ReportID,
		CaseNumber: report.CaseNumber,
		Status:     report.Status,
		ActorID:    actorID,
		OccurredAt: now,
	})

	return report, nil
}

// UpdateStatus moves a report to newStatus and appends a ledger entry
// recording the transition. Any of the three statuses is a valid target
// from any other; direction is never restricted, only logged.
func (m *Manager) UpdateStatus(ctx context.Context, reportID string, newStatus model.ReportStatus, note, actorID string) (*model.Report, error) {
	if !model.ValidStatus(newStatus) {
		return nil, apperr.Validation("unknown status").WithDetail("status", string(newStatus))
	}

	report, err := m.st.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	now := m.clock()
	oldStatus := report.Status
	report.Status = newStatus
	report.UpdatedAt = now

	entry := &model.TimelineEntry{
		TimelineID:  uuid.New().String(),
		StatusFrom:  oldStatus,
		StatusTo:    newStatus,
		Note:        note,
		ActorUserID: actorID,
		CreatedAt:   now,
	}
	if err := m.applyTransition(ctx, report, entry); err != nil {
		return nil, err
	}

	m.publish(ctx, events.Event{
		Type:       events.TypeStatusChanged,
		ReportID:   report.ReportID,
		CaseNumber: report.CaseNumber,
		Status:     newStatus,
		ActorID:    actorID,
		OccurredAt: now,
	})

	return report, nil
}

// applyTransition persists the report replacement and the ledger entry
// atomically. The write is last-write-wins on concurrent updates to the
// same report; the ledger still records every accepted operation.
func (m *Manager) applyTransition(ctx context.Context, report *model.Report, entry *model.TimelineEntry) error {
	return m.st.ApplyTransition(ctx, report, entry)
}

// GetTimeline returns the report's ledger, ascending by creation time.
func (m *Manager) GetTimeline(ctx context.Context, reportID string) ([]*model.TimelineEntry, error) {
	if _, err := m.st.GetReport(ctx, reportID); err != nil {
		return nil, err
	}
	return m.st.List(ctx, reportID)
}

// ListBySubmitter returns a user's reports sorted by createdAt descending.
// Reports with a zero createdAt sort last. The store does not guarantee
// server-side ordering for this query shape, so the sort happens here.
func (m *Manager) ListBySubmitter(ctx context.Context, userID string) ([]*model.Report, error) {
	reports, err := m.st.ListBySubmitter(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i].CreatedAt, reports[j].CreatedAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
	return reports, nil
}

// ListByStatus returns reports in the given status. Unknown statuses are
// rejected rather than silently matching nothing.
func (m *Manager) ListByStatus(ctx context.Context, status model.ReportStatus) ([]*model.Report, error) {
	if !model.ValidStatus(status) {
		return nil, apperr.Validation("unknown status").WithDetail("status", string(status))
	}
	return m.st.ListByStatus(ctx, status)
}

// ListByOfficer returns reports assigned to officerID.
func (m *Manager) ListByOfficer(ctx context.Context, officerID string) ([]*model.Report, error) {
	return m.st.ListByOfficer(ctx, officerID)
}

// ListAll returns every report. Role gating happens in the calling layer.
func (m *Manager) ListAll(ctx context.Context) ([]*model.Report, error) {
	return m.st.ListAll(ctx)
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.log.Warn("lifecycle event not published",
			"type", string(event.Type),
			"report_id", event.ReportID,
			"error", err,
		)
	}
}

// ParseIncidentAt parses an ISO 8601 incident timestamp. A malformed value
// is reported but must not fail report creation; callers log and continue.
func ParseIncidentAt(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
