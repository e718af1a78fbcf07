// Package model provides data models for crime reports and their audit timeline.
package model

import "time"

// ReportStatus represents report status values.
type ReportStatus string

const (
	StatusPending            ReportStatus = "PENDING"
	StatusUnderInvestigation ReportStatus = "UNDER_INVESTIGATION"
	StatusClosed             ReportStatus = "CLOSED"
)

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s ReportStatus) bool {
	switch s {
	case StatusPending, StatusUnderInvestigation, StatusClosed:
		return true
	}
	return false
}

// ReportPriority represents report priority levels.
type ReportPriority string

const (
	PriorityLow    ReportPriority = "LOW"
	PriorityMedium ReportPriority = "MEDIUM"
	PriorityHigh   ReportPriority = "HIGH"
)

// Report represents a citizen-submitted crime report tracked through its lifecycle.
type Report struct {
	ReportID          string       `json:"reportId" db:"report_id"`
	SubmitterID       string       `json:"submitterId" db:"submitter_id"`
	AssignedOfficerID string       `json:"assignedOfficerId,omitempty" db:"assigned_officer_id"`
	Title             string       `json:"title" db:"title"`
	Description       string       `json:"description" db:"description"`
	Category          string       `json:"category" db:"category"` // THEFT, ASSAULT, VANDALISM, etc.
	Priority          string       `json:"priority" db:"priority"` // LOW, MEDIUM, HIGH
	Location          string       `json:"location" db:"location"`
	Latitude          *float64     `json:"latitude,omitempty" db:"latitude"`
	Longitude         *float64     `json:"longitude,omitempty" db:"longitude"`
	IncidentAt        *time.Time   `json:"incidentAt,omitempty" db:"incident_at"`
	CaseNumber        string       `json:"caseNumber" db:"case_number"`
	IsAnonymous       bool         `json:"isAnonymous" db:"is_anonymous"`
	Status            ReportStatus `json:"status" db:"status"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" db:"updated_at"`
}

// TimelineEntry is one immutable audit record of a state-changing operation
// on a report. Entries are never edited or removed once written.
type TimelineEntry struct {
	TimelineID  string       `json:"timelineId" db:"timeline_id"`
	ReportID    string       `json:"-" db:"report_id"`
	StatusFrom  ReportStatus `json:"statusFrom" db:"status_from"`
	StatusTo    ReportStatus `json:"statusTo" db:"status_to"`
	Note        string       `json:"note" db:"note"`
	ActorUserID string       `json:"actorUserId" db:"actor_user_id"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
}

// CreateReportRequest represents a request to file a new report.
// IncidentAt is an ISO 8601 string; a malformed value is dropped, not fatal.
type CreateReportRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	IncidentAt  string   `json:"incidentAt,omitempty"`
	IsAnonymous bool     `json:"isAnonymous"`
}

// AssignOfficerRequest represents a request to assign an officer to a report.
type AssignOfficerRequest struct {
	OfficerID string `json:"officerId"`
}

// UpdateStatusRequest represents a request to move a report to a new status.
type UpdateStatusRequest struct {
	Status ReportStatus `json:"status"`
	Note   string       `json:"note"`
}

// ReportSummary provides aggregate statistics over the report store.
type ReportSummary struct {
	TotalReports       int64                  `json:"totalReports"`
	PendingReports     int64                  `json:"pendingReports"`
	UnderInvestigation int64                  `json:"underInvestigation"`
	ClosedReports      int64                  `json:"closedReports"`
	ByStatus           map[ReportStatus]int64 `json:"byStatus"`
	ByCategory         map[string]int64       `json:"byCategory"`
}
