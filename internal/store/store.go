// Package store provides the persistence contracts for reports, their
// append-only timeline ledger, anonymous tips, and attachment metadata.
// Implementations: Postgres (production) and in-memory (dev/tests).
package store

import (
	"context"
	"strings"

	"github.com/crimenet/report-service/internal/apperr"
	"github.com/crimenet/report-service/internal/model"
)

// ReportStore holds one record per report. Put is a full replace; callers
// are expected to have read the current version first. List results come
// back in store order; deterministic ordering is applied in the read path.
type ReportStore interface {
	CreateReport(ctx context.Context, report *model.Report) error
	GetReport(ctx context.Context, reportID string) (*model.Report, error)
	PutReport(ctx context.Context, report *model.Report) error
	ListBySubmitter(ctx context.Context, userID string) ([]*model.Report, error)
	ListByStatus(ctx context.Context, status model.ReportStatus) ([]*model.Report, error)
	ListByOfficer(ctx context.Context, officerID string) ([]*model.Report, error)
	ListAll(ctx context.Context) ([]*model.Report, error)
	Summary(ctx context.Context) (*model.ReportSummary, error)
}

// TimelineLedger is the append-only audit sequence per report. Entries are
// immutable once accepted and are listed ascending by creation time with
// stable insertion-order tie-break.
type TimelineLedger interface {
	Append(ctx context.Context, reportID string, entry *model.TimelineEntry) error
	List(ctx context.Context, reportID string) ([]*model.TimelineEntry, error)
}

// LifecycleStore is the persistence surface the lifecycle manager operates
// on. ApplyTransition persists the report replacement and the ledger entry
// atomically: either both are observable afterwards or neither is.
type LifecycleStore interface {
	ReportStore
	TimelineLedger
	ApplyTransition(ctx context.Context, report *model.Report, entry *model.TimelineEntry) error
}

// TipStore persists anonymous tips.
type TipStore interface {
	CreateTip(ctx context.Context, tip *model.Tip) error
	GetTip(ctx context.Context, tipID string) (*model.Tip, error)
	ListTips(ctx context.Context) ([]*model.Tip, error)
}

// AttachmentStore persists per-report attachment metadata. Blob content
// lives in the blob store, keyed by Attachment.StorageKey.
type AttachmentStore interface {
	AddAttachment(ctx context.Context, att *model.Attachment) error
	GetAttachment(ctx context.Context, reportID, attachmentID string) (*model.Attachment, error)
	ListAttachments(ctx context.Context, reportID string) ([]*model.Attachment, error)
}

// Store bundles the full persistence surface.
type Store interface {
	LifecycleStore
	TipStore
	AttachmentStore
}

// validateReport enforces the required-field contract for report creation.
func validateReport(report *model.Report) error {
	switch {
	case strings.TrimSpace(report.Title) == "":
		return apperr.Validation("title is required")
	case strings.TrimSpace(report.Description) == "":
		return apperr.Validation("description is required")
	case strings.TrimSpace(report.Category) == "":
		return apperr.Validation("category is required")
	case strings.TrimSpace(report.Priority) == "":
		return apperr.Validation("priority is required")
	case strings.TrimSpace(report.Location) == "":
		return apperr.Validation("location is required")
	}
	return nil
}
