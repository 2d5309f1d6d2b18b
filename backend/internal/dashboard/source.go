// Package dashboard aggregates one role-specific dashboard from the portal
// API: a primary snapshot, then the role's secondary sources fetched
// concurrently, reconciled against the snapshot and reduced to a Bundle.
package dashboard

import (
	"context"

	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

// Source is the remote portal API as seen by the builder. Each method is one
// independent fetch on behalf of sess.
type Source interface {
	Snapshot(ctx context.Context, sess session.Context, role shared.Role) (shared.Snapshot, error)

	AttendanceSummary(ctx context.Context, sess session.Context) ([]shared.AttendanceRecord, error)
	Marks(ctx context.Context, sess session.Context) ([]shared.MarkRecord, error)
	Fees(ctx context.Context, sess session.Context) (*shared.FeeSummary, error)
	ExamSchedule(ctx context.Context, sess session.Context) ([]shared.ExamEntry, error)

	Notices(ctx context.Context, sess session.Context) ([]shared.Notice, error)
	Messages(ctx context.Context, sess session.Context) ([]shared.Message, error)
	Timetable(ctx context.Context, sess session.Context, role shared.Role) ([]shared.TimetableEntry, error)

	Assignments(ctx context.Context, sess session.Context) ([]shared.Assignment, error)
	Courses(ctx context.Context, sess session.Context) ([]shared.Course, error)
	CourseRoster(ctx context.Context, sess session.Context, courseID string) ([]shared.RosterEntry, error)
}
