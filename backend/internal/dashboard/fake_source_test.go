package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

var errSourceDown = errors.New("source down")

// fakeSource serves canned payloads. A name listed in fail rejects.
type fakeSource struct {
	snapshot    shared.Snapshot
	snapshotErr error

	attendance  []shared.AttendanceRecord
	marks       []shared.MarkRecord
	fees        *shared.FeeSummary
	exams       []shared.ExamEntry
	notices     []shared.Notice
	messages    []shared.Message
	timetable   []shared.TimetableEntry
	assignments []shared.Assignment
	courses     []shared.Course
	rosters     map[string][]shared.RosterEntry

	fail map[string]bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return errSourceDown
	}
	return nil
}

func (f *fakeSource) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeSource) Snapshot(ctx context.Context, sess session.Context, role shared.Role) (shared.Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "snapshot")
	f.mu.Unlock()
	return f.snapshot, f.snapshotErr
}

func (f *fakeSource) AttendanceSummary(ctx context.Context, sess session.Context) ([]shared.AttendanceRecord, error) {
	return f.attendance, f.record(DomainAttendance)
}

func (f *fakeSource) Marks(ctx context.Context, sess session.Context) ([]shared.MarkRecord, error) {
	return f.marks, f.record(DomainMarks)
}

func (f *fakeSource) Fees(ctx context.Context, sess session.Context) (*shared.FeeSummary, error) {
	return f.fees, f.record(DomainFees)
}

func (f *fakeSource) ExamSchedule(ctx context.Context, sess session.Context) ([]shared.ExamEntry, error) {
	return f.exams, f.record(DomainExams)
}

func (f *fakeSource) Notices(ctx context.Context, sess session.Context) ([]shared.Notice, error) {
	return f.notices, f.record(DomainNotices)
}

func (f *fakeSource) Messages(ctx context.Context, sess session.Context) ([]shared.Message, error) {
	return f.messages, f.record(DomainMessages)
}

func (f *fakeSource) Timetable(ctx context.Context, sess session.Context, role shared.Role) ([]shared.TimetableEntry, error) {
	return f.timetable, f.record(DomainTimetable)
}

func (f *fakeSource) Assignments(ctx context.Context, sess session.Context) ([]shared.Assignment, error) {
	return f.assignments, f.record(DomainAssignments)
}

func (f *fakeSource) Courses(ctx context.Context, sess session.Context) ([]shared.Course, error) {
	return f.courses, f.record(DomainCourses)
}

func (f *fakeSource) CourseRoster(ctx context.Context, sess session.Context, courseID string) ([]shared.RosterEntry, error) {
	if err := f.record(DomainRosters + ":" + courseID); err != nil {
		return nil, err
	}
	return f.rosters[courseID], nil
}

func decode[T any](raw string) T {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		panic(err)
	}
	return v
}

func testSession(role shared.Role) session.Context {
	return session.New("token", session.User{ID: "u1", Name: "Test", Role: role}, session.Preferences{})
}

func roster(n int) []shared.RosterEntry {
	out := make([]shared.RosterEntry, n)
	for i := range out {
		out[i].StudentID = shared.Text(string(rune('a'+i)) + "-student")
	}
	return out
}
