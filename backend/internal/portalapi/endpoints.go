package portalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

// Portal API paths, relative to the base URL.
const (
	pathDashboard   = "/dashboard/"
	pathAttendance  = "/attendance/summary"
	pathMarks       = "/marks/my"
	pathFees        = "/fees/my"
	pathExams       = "/exams/schedule"
	pathNotices     = "/notices"
	pathMessages    = "/messages"
	pathTimetable   = "/timetable/"
	pathAssignments = "/assignments/teacher"
	pathCourses     = "/courses/teacher"
	pathCourse      = "/courses/"
)

func (c *Client) Snapshot(ctx context.Context, sess session.Context, role shared.Role) (shared.Snapshot, error) {
	var snap shared.Snapshot
	if err := c.get(ctx, sess, pathDashboard+escape(string(role)), &snap); err != nil {
		return shared.Snapshot{}, err
	}
	if snap.KPIs == nil {
		snap.KPIs = shared.KPIs{}
	}
	return snap, nil
}

func (c *Client) AttendanceSummary(ctx context.Context, sess session.Context) ([]shared.AttendanceRecord, error) {
	return getList[shared.AttendanceRecord](ctx, c, sess, pathAttendance)
}

func (c *Client) Marks(ctx context.Context, sess session.Context) ([]shared.MarkRecord, error) {
	return getList[shared.MarkRecord](ctx, c, sess, pathMarks)
}

// Fees returns the fee summary. A bare array of fee records is accepted as
// a summary without totals.
func (c *Client) Fees(ctx context.Context, sess session.Context) (*shared.FeeSummary, error) {
	var raw json.RawMessage
	if err := c.get(ctx, sess, pathFees, &raw); err != nil {
		return nil, err
	}

	var records shared.List[shared.FeeRecord]
	if err := json.Unmarshal(raw, &records); err == nil && records.Present {
		return &shared.FeeSummary{Records: records}, nil
	}

	var summary shared.FeeSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, &APIError{Method: http.MethodGet, Path: pathFees, StatusCode: http.StatusOK, Err: fmt.Errorf("decode fee summary: %w", err)}
	}
	return &summary, nil
}

func (c *Client) ExamSchedule(ctx context.Context, sess session.Context) ([]shared.ExamEntry, error) {
	return getList[shared.ExamEntry](ctx, c, sess, pathExams)
}

func (c *Client) Notices(ctx context.Context, sess session.Context) ([]shared.Notice, error) {
	return getList[shared.Notice](ctx, c, sess, pathNotices)
}

func (c *Client) Messages(ctx context.Context, sess session.Context) ([]shared.Message, error) {
	return getList[shared.Message](ctx, c, sess, pathMessages)
}

func (c *Client) Timetable(ctx context.Context, sess session.Context, role shared.Role) ([]shared.TimetableEntry, error) {
	return getList[shared.TimetableEntry](ctx, c, sess, pathTimetable+escape(string(role)))
}

func (c *Client) Assignments(ctx context.Context, sess session.Context) ([]shared.Assignment, error) {
	return getList[shared.Assignment](ctx, c, sess, pathAssignments)
}

func (c *Client) Courses(ctx context.Context, sess session.Context) ([]shared.Course, error) {
	return getList[shared.Course](ctx, c, sess, pathCourses)
}

func (c *Client) CourseRoster(ctx context.Context, sess session.Context, courseID string) ([]shared.RosterEntry, error) {
	if courseID == "" {
		return nil, &APIError{Method: http.MethodGet, Path: pathCourse, StatusCode: http.StatusBadRequest, Message: "course id is required"}
	}
	return getList[shared.RosterEntry](ctx, c, sess, pathCourse+escape(courseID)+"/students")
}
