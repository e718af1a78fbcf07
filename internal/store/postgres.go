package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crimenet/report-service/internal/apperr"
	"github.com/crimenet/report-service/internal/model"
)

// Postgres implements Store on a PostgreSQL database via sqlx.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// schema is applied on startup. The seq column on report_timeline gives the
// ledger a stable tie-break when two entries share a created_at.
const schema = `
CREATE TABLE IF NOT EXISTS reports (
	report_id           TEXT PRIMARY KEY,
	submitter_id        TEXT NOT NULL,
	assigned_officer_id TEXT,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	category            TEXT NOT NULL,
	priority            TEXT NOT NULL,
	location            TEXT NOT NULL,
	latitude            DOUBLE PRECISION,
	longitude           DOUBLE PRECISION,
	incident_at         TIMESTAMPTZ,
	case_number         TEXT NOT NULL,
	is_anonymous        BOOLEAN NOT NULL DEFAULT FALSE,
	status              TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_submitter ON reports (submitter_id);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status);
CREATE INDEX IF NOT EXISTS idx_reports_officer ON reports (assigned_officer_id);

CREATE TABLE IF NOT EXISTS report_timeline (
	seq           BIGSERIAL PRIMARY KEY,
	timeline_id   TEXT NOT NULL,
	report_id     TEXT NOT NULL REFERENCES reports (report_id),
	status_from   TEXT NOT NULL,
	status_to     TEXT NOT NULL,
	note          TEXT NOT NULL DEFAULT '',
	actor_user_id TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_timeline_report ON report_timeline (report_id, created_at, seq);

CREATE TABLE IF NOT EXISTS tips (
	tip_id     TEXT PRIMARY KEY,
	subject    TEXT NOT NULL,
	body       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	location   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS attachments (
	attachment_id TEXT PRIMARY KEY,
	report_id     TEXT NOT NULL REFERENCES reports (report_id),
	file_name     TEXT NOT NULL,
	content_type  TEXT NOT NULL,
	size          BIGINT NOT NULL,
	storage_key   TEXT NOT NULL,
	uploaded_by   TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attachments_report ON attachments (report_id);
`

// Migrate creates the schema if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return apperr.Store(err, "failed to apply schema")
	}
	return nil
}

// CreateReport inserts a new report, assigning a report ID if absent.
func (p *Postgres) CreateReport(ctx context.Context, report *model.Report) error {
	if err := validateReport(report); err != nil {
		return err
	}
	if report.ReportID == "" {
		report.ReportID = uuid.New().String()
	}

	query := `
		INSERT INTO reports (
			report_id, submitter_id, assigned_officer_id, title, description,
			category, priority, location, latitude, longitude, incident_at,
			case_number, is_anonymous, status, created_at, updated_at
		) VALUES (
			:report_id, :submitter_id, :assigned_officer_id, :title, :description,
			:category, :priority, :location, :latitude, :longitude, :incident_at,
			:case_number, :is_anonymous, :status, :created_at, :updated_at
		)
	`
	if _, err := p.db.NamedExecContext(ctx, query, toDBReport(report)); err != nil {
		return apperr.Store(err, "failed to create report")
	}
	return nil
}

// GetReport retrieves a report by ID.
func (p *Postgres) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	var row dbReport
	err := p.db.GetContext(ctx, &row, `SELECT * FROM reports WHERE report_id = $1`, reportID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("report").WithDetail("reportId", reportID)
	}
	if err != nil {
		return nil, apperr.Store(err, "failed to get report")
	}
	return fromDBReport(&row), nil
}

const updateReportQuery = `
	UPDATE reports SET
		submitter_id = :submitter_id,
		assigned_officer_id = :assigned_officer_id,
		title = :title,
		description = :description,
		category = :category,
		priority = :priority,
		location = :location,
		latitude = :latitude,
		longitude = :longitude,
		incident_at = :incident_at,
		case_number = :case_number,
		is_anonymous = :is_anonymous,
		status = :status,
		created_at = :created_at,
		updated_at = :updated_at
	WHERE report_id = :report_id
`

const insertTimelineQuery = `
	INSERT INTO report_timeline (
		timeline_id, report_id, status_from, status_to, note, actor_user_id, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// PutReport fully replaces the stored record.
func (p *Postgres) PutReport(ctx context.Context, report *model.Report) error {
	result, err := p.db.NamedExecContext(ctx, updateReportQuery, toDBReport(report))
	if err != nil {
		return apperr.Store(err, "failed to update report")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Store(err, "failed to update report")
	}
	if rows == 0 {
		return apperr.NotFound("report").WithDetail("reportId", report.ReportID)
	}
	return nil
}

// ListBySubmitter returns all reports filed by userID, in store order.
func (p *Postgres) ListBySubmitter(ctx context.Context, userID string) ([]*model.Report, error) {
	return p.listReports(ctx, `SELECT * FROM reports WHERE submitter_id = $1`, userID)
}

// ListByStatus returns all reports in the given status, in store order.
func (p *Postgres) ListByStatus(ctx context.Context, status model.ReportStatus) ([]*model.Report, error) {
	return p.listReports(ctx, `SELECT * FROM reports WHERE status = $1`, string(status))
}

// ListByOfficer returns all reports assigned to officerID, in store order.
func (p *Postgres) ListByOfficer(ctx context.Context, officerID string) ([]*model.Report, error) {
	return p.listReports(ctx, `SELECT * FROM reports WHERE assigned_officer_id = $1`, officerID)
}

// ListAll returns every report, in store order.
func (p *Postgres) ListAll(ctx context.Context) ([]*model.Report, error) {
	return p.listReports(ctx, `SELECT * FROM reports`)
}

func (p *Postgres) listReports(ctx context.Context, query string, args ...interface{}) ([]*model.Report, error) {
	var rows []dbReport
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperr.Store(err, "failed to list reports")
	}
	reports := make([]*model.Report, len(rows))
	for i := range rows {
		reports[i] = fromDBReport(&rows[i])
	}
	return reports, nil
}

// Summary computes aggregate statistics over the report store.
func (p *Postgres) Summary(ctx context.Context) (*model.ReportSummary, error) {
	summary := &model.ReportSummary{
		ByStatus:   make(map[model.ReportStatus]int64),
		ByCategory: make(map[string]int64),
	}

	var statusCounts []struct {
		Status model.ReportStatus `db:"status"`
		Count  int64              `db:"count"`
	}
	err := p.db.SelectContext(ctx, &statusCounts,
		`SELECT status, COUNT(*) AS count FROM reports GROUP BY status`)
	if err != nil {
		return nil, apperr.Store(err, "failed to count reports by status")
	}
	for _, sc := range statusCounts {
		summary.ByStatus[sc.Status] = sc.Count
		summary.TotalReports += sc.Count
	}
	summary.PendingReports = summary.ByStatus[model.StatusPending]
	summary.UnderInvestigation = summary.ByStatus[model.StatusUnderInvestigation]
	summary.ClosedReports = summary.ByStatus[model.StatusClosed]

	var categoryCounts []struct {
		Category string `db:"category"`
		Count    int64  `db:"count"`
	}
	err = p.db.SelectContext(ctx, &categoryCounts,
		`SELECT category, COUNT(*) AS count FROM reports GROUP BY category`)
	if err != nil {
		return nil, apperr.Store(err, "failed to count reports by category")
	}
	for _, cc := range categoryCounts {
		summary.ByCategory[cc.Category] = cc.Count
	}

	return summary, nil
}

// ApplyTransition replaces the report and appends the ledger entry in one
// transaction. A failure on either statement rolls back both.
func (p *Postgres) ApplyTransition(ctx context.Context, report *model.Report, entry *model.TimelineEntry) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Store(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	result, err := tx.NamedExecContext(ctx, updateReportQuery, toDBReport(report))
	if err != nil {
		return apperr.Store(err, "failed to update report")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Store(err, "failed to update report")
	}
	if rows == 0 {
		return apperr.NotFound("report").WithDetail("reportId", report.ReportID)
	}

	entry.ReportID = report.ReportID
	_, err = tx.ExecContext(ctx, insertTimelineQuery,
		entry.TimelineID, report.ReportID, string(entry.StatusFrom), string(entry.StatusTo),
		entry.Note, entry.ActorUserID, entry.CreatedAt,
	)
	if err != nil {
		return apperr.Store(err, "failed to append timeline entry")
	}

	if err := tx.Commit(); err != nil {
		return apperr.Store(err, "failed to commit transaction")
	}
	return nil
}

// Append writes a ledger entry for reportID. Fails with NotFound if the
// parent report does not exist.
func (p *Postgres) Append(ctx context.Context, reportID string, entry *model.TimelineEntry) error {
	var exists bool
	err := p.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM reports WHERE report_id = $1)`, reportID)
	if err != nil {
		return apperr.Store(err, "failed to check report existence")
	}
	if !exists {
		return apperr.NotFound("report").WithDetail("reportId", reportID)
	}

	entry.ReportID = reportID
	_, err = p.db.ExecContext(ctx, insertTimelineQuery,
		entry.TimelineID, reportID, string(entry.StatusFrom), string(entry.StatusTo),
		entry.Note, entry.ActorUserID, entry.CreatedAt,
	)
	if err != nil {
		return apperr.Store(err, "failed to append timeline entry")
	}
	return nil
}

// List returns the ledger for reportID ascending by created_at, ties broken
// by insertion order.
func (p *Postgres) List(ctx context.Context, reportID string) ([]*model.TimelineEntry, error) {
	var rows []model.TimelineEntry
	err := p.db.SelectContext(ctx, &rows, `
		SELECT timeline_id, report_id, status_from, status_to, note, actor_user_id, created_at
		FROM report_timeline
		WHERE report_id = $1
		ORDER BY created_at ASC, seq ASC
	`, reportID)
	if err != nil {
		return nil, apperr.Store(err, "failed to list timeline")
	}
	entries := make([]*model.TimelineEntry, len(rows))
	for i := range rows {
		entries[i] = &rows[i]
	}
	return entries, nil
}

// CreateTip inserts an anonymous tip.
func (p *Postgres) CreateTip(ctx context.Context, tip *model.Tip) error {
	if tip.TipID == "" {
		tip.TipID = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tips (tip_id, subject, body, category, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, tip.TipID, tip.Subject, tip.Body, tip.Category, tip.Location, tip.CreatedAt)
	if err != nil {
		return apperr.Store(err, "failed to create tip")
	}
	return nil
}

// GetTip retrieves a tip by ID.
func (p *Postgres) GetTip(ctx context.Context, tipID string) (*model.Tip, error) {
	var tip model.Tip
	err := p.db.GetContext(ctx, &tip, `SELECT * FROM tips WHERE tip_id = $1`, tipID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("tip").WithDetail("tipId", tipID)
	}
	if err != nil {
		return nil, apperr.Store(err, "failed to get tip")
	}
	return &tip, nil
}

// ListTips returns all tips, newest first.
func (p *Postgres) ListTips(ctx context.Context) ([]*model.Tip, error) {
	var rows []model.Tip
	err := p.db.SelectContext(ctx, &rows, `SELECT * FROM tips ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Store(err, "failed to list tips")
	}
	tips := make([]*model.Tip, len(rows))
	for i := range rows {
		tips[i] = &rows[i]
	}
	return tips, nil
}

// AddAttachment records attachment metadata for a report.
func (p *Postgres) AddAttachment(ctx context.Context, att *model.Attachment) error {
	var exists bool
	err := p.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM reports WHERE report_id = $1)`, att.ReportID)
	if err != nil {
		return apperr.Store(err, "failed to check report existence")
	}
	if !exists {
		return apperr.NotFound("report").WithDetail("reportId", att.ReportID)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO attachments (
			attachment_id, report_id, file_name, content_type, size, storage_key, uploaded_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, att.AttachmentID, att.ReportID, att.FileName, att.ContentType, att.Size,
		att.StorageKey, att.UploadedBy, att.CreatedAt)
	if err != nil {
		return apperr.Store(err, "failed to add attachment")
	}
	return nil
}

// GetAttachment retrieves attachment metadata.
func (p *Postgres) GetAttachment(ctx context.Context, reportID, attachmentID string) (*model.Attachment, error) {
	var att model.Attachment
	err := p.db.GetContext(ctx, &att,
		`SELECT * FROM attachments WHERE report_id = $1 AND attachment_id = $2`, reportID, attachmentID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("attachment").WithDetail("attachmentId", attachmentID)
	}
	if err != nil {
		return nil, apperr.Store(err, "failed to get attachment")
	}
	return &att, nil
}

// ListAttachments returns attachment metadata for a report.
func (p *Postgres) ListAttachments(ctx context.Context, reportID string) ([]*model.Attachment, error) {
	var rows []model.Attachment
	err := p.db.SelectContext(ctx, &rows,
		`SELECT * FROM attachments WHERE report_id = $1 ORDER BY created_at ASC`, reportID)
	if err != nil {
		return nil, apperr.Store(err, "failed to list attachments")
	}
	atts := make([]*model.Attachment, len(rows))
	for i := range rows {
		atts[i] = &rows[i]
	}
	return atts, nil
}

// dbReport mirrors the reports table; nullable columns use sql.Null types.
type dbReport struct {
	ReportID          string          `db:"report_id"`
	SubmitterID       string          `db:"submitter_id"`
	AssignedOfficerID sql.NullString  `db:"assigned_officer_id"`
	Title             string          `db:"title"`
	Description       string          `db:"description"`
	Category          string          `db:"category"`
	Priority          string          `db:"priority"`
	Location          string          `db:"location"`
	Latitude          sql.NullFloat64 `db:"latitude"`
	Longitude         sql.NullFloat64 `db:"longitude"`
	IncidentAt        *time.Time      `db:"incident_at"`
	CaseNumber        string          `db:"case_number"`
	IsAnonymous       bool            `db:"is_anonymous"`
	Status            string          `db:"status"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func toDBReport(r *model.Report) *dbReport {
	row := &dbReport{
		ReportID:    r.ReportID,
		SubmitterID: r.SubmitterID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
		Location:    r.Location,
		IncidentAt:  r.IncidentAt,
		CaseNumber:  r.CaseNumber,
		IsAnonymous: r.IsAnonymous,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.AssignedOfficerID != "" {
		row.AssignedOfficerID = sql.NullString{String: r.AssignedOfficerID, Valid: true}
	}
	if r.Latitude != nil {
		row.Latitude = sql.NullFloat64{Float64: *r.Latitude, Valid: true}
	}
	if r.Longitude != nil {
		row.Longitude = sql.NullFloat64{Float64: *r.Longitude, Valid: true}
	}
	return row
}

func fromDBReport(row *dbReport) *model.Report {
	r := &model.Report{
		ReportID:    row.ReportID,
		SubmitterID: row.SubmitterID,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		Priority:    row.Priority,
		Location:    row.Location,
		IncidentAt:  row.IncidentAt,
		CaseNumber:  row.CaseNumber,
		IsAnonymous: row.IsAnonymous,
		Status:      model.ReportStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.AssignedOfficerID.Valid {
		r.AssignedOfficerID = row.AssignedOfficerID.String
	}
	if row.Latitude.Valid {
		lat := row.Latitude.Float64
		r.Latitude = &lat
	}
	if row.Longitude.Valid {
		lng := row.Longitude.Float64
		r.Longitude = &lng
	}
	return r
}
