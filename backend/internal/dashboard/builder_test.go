package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portal_dashboard/backend/internal/shared"
)

func TestStudentFeeDueFallsBackToSnapshotKPI(t *testing.T) {
	src := &fakeSource{
		snapshot: decode[shared.Snapshot](`{"kpis":{"feeDue":500}}`),
		fail:     map[string]bool{DomainFees: true},
	}

	bundle, err := NewBuilder(src, nil).Build(context.Background(), testSession(shared.RoleStudent), shared.RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, 500.0, bundle.Fees.TotalDue)
	assert.Equal(t, OriginSnapshot, bundle.Sources[DomainFees])
	assert.NotNil(t, bundle.Fees.Records)
}

func TestTeacherCourseLoad(t *testing.T) {
	src := &fakeSource{
		snapshot: decode[shared.Snapshot](`{"kpis":{}}`),
		courses: decode[[]shared.Course](`[
			{"_id":"c1","code":"CS101","title":"Intro"},
			{"_id":"c2","code":"CS102","title":"Data"},
			{"_id":"c3","code":"CS103","title":"Systems"}
		]`),
		rosters: map[string][]shared.RosterEntry{
			"c1": roster(5),
			"c3": roster(7),
		},
		fail: map[string]bool{DomainRosters + ":c2": true},
	}

	bundle, err := NewBuilder(src, nil).Build(context.Background(), testSession(shared.RoleTeacher), shared.RoleTeacher)
	require.NoError(t, err)

	require.Len(t, bundle.CourseLoad, 3)
	counts := []int{bundle.CourseLoad[0].StudentCount, bundle.CourseLoad[1].StudentCount, bundle.CourseLoad[2].StudentCount}
	assert.Equal(t, []int{7, 5, 0}, counts)
	assert.Equal(t, "CS103", bundle.CourseLoad[0].Code)
	assert.Equal(t, "CS102", bundle.CourseLoad[2].Code)

	// roster(n) reuses the same ids across courses, so 7 distinct students.
	assert.Equal(t, 7, bundle.EnrolledStudents)
}

func TestTeacherEnrolledStudentsPrefersKPI(t *testing.T) {
	src := &fakeSource{
		snapshot: decode[shared.Snapshot](`{"kpis":{"enrolledStudents":"42"}}`),
		courses:  decode[[]shared.Course](`[{"_id":"c1"}]`),
		rosters:  map[string][]shared.RosterEntry{"c1": roster(3)},
	}

	bundle, err := NewBuilder(src, nil).Build(context.Background(), testSession(shared.RoleTeacher), shared.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, 42, bundle.EnrolledStudents)
}

func TestEmptyDedicatedFetchWinsOverSnapshot(t *testing.T) {
	src := &fakeSource{
		snapshot: decode[shared.Snapshot](`{"notices":[
			{"title":"Legacy one","content":"old"},
			{"title":"Legacy two","content":"older"}
		]}`),
		notices: []shared.Notice{},
	}

	bundle, err := NewBuilder(src, nil).Build(context.Background(), testSession(shared.RoleStudent), shared.RoleStudent)
	require.NoError(t, err)

	assert.Empty(t, bundle.Notices.All)
	assert.NotNil(t, bundle.Notices.All)
	assert.Nil(t, bundle.Notices.Featured)
	assert.Equal(t, OriginFetched, bundle.Sources[DomainNotices])
}

func TestFailedSourcesUseSnapshotThenDefault(t *testing.T) {
	src := &fakeSource{
		snapshot: decode[shared.Snapshot](`{
			"kpis":{"attendancePercentage":88},
			"recentMarks":[{"course":{"code":"CS101"},"obtainedMarks":46,"maxMarks":50}],
			"examSchedule":"not a list"
		}`),
		fail: map[string]bool{
			DomainMarks:      true,
			DomainExams:      true,
			DomainAttendance: true,
		},
	}

	bundle, err := NewBuilder(src, nil).Build(context.Background(), testSession(shared.RoleStudent), shared.RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, OriginSnapshot, bundle.Sources[DomainMarks])
	require.Len(t, bundle.Marks, 1)
	assert.Equal(t, 10.0, bundle.GPA.Overall)

	assert.Equal(t, OriginDefault, bundle.Sources[DomainExams])
	assert.NotNil(t, bundle.Exams)
	assert.Empty(t, bundle.Exams)

	assert.Equal(t, OriginDefault, bundle.Sources[DomainAttendance])
	assert.Equal(t, 88.0, bundle.Attendance.Overall)
}

func TestSnapshotFailureAbortsCycle(t *testing.T) {
	src := &fakeSource{snapshotErr: status.Error(codes.PermissionDenied, "not allowed")}

	_, err := NewBuilder(src, nil).Build(context.Background(), testSession(shared.RoleStudent), shared.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.False(t, src.called(DomainMarks), "secondary sources must not run")
}

func TestSnapshotFailureWithoutStatusIsUnavailable(t *testing.T) {
	src := &fakeSource{snapshotErr: errSourceDown}

	_, err := NewBuilder(src, nil).Build(context.Background(), testSession(shared.RoleAdmin), shared.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.ErrorIs(t, err, errSourceDown)
}

func TestUnknownRole(t *testing.T) {
	src := &fakeSource{}
	_, err := NewBuilder(src, nil).Build(context.Background(), testSession(shared.RoleStudent), shared.Role("parent"))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.False(t, src.called("snapshot"))
}

func TestRolePlans(t *testing.T) {
	cases := []struct {
		role    shared.Role
		planned []string
		skipped []string
	}{
		{
			role:    shared.RoleStudent,
			planned: []string{DomainAttendance, DomainMarks, DomainNotices, DomainMessages, DomainTimetable, DomainExams, DomainFees},
			skipped: []string{DomainAssignments, DomainCourses},
		},
		{
			role:    shared.RoleTeacher,
			planned: []string{DomainNotices, DomainMessages, DomainTimetable, DomainAssignments, DomainCourses},
			skipped: []string{DomainAttendance, DomainMarks, DomainFees, DomainExams},
		},
		{
			role:    shared.RoleAdmin,
			planned: []string{DomainNotices, DomainMessages},
			skipped: []string{DomainTimetable, DomainMarks, DomainCourses},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			src := &fakeSource{}
			bundle, err := NewBuilder(src, nil).Build(context.Background(), testSession(tc.role), tc.role)
			require.NoError(t, err)

			for _, name := range tc.planned {
				assert.True(t, src.called(name), name)
				assert.Contains(t, bundle.Sources, name)
			}
			for _, name := range tc.skipped {
				assert.False(t, src.called(name), name)
				assert.NotContains(t, bundle.Sources, name)
			}
		})
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	src := &fakeSource{
		snapshot: decode[shared.Snapshot](`{"kpis":{"cgpa":"8.1"}}`),
		marks: decode[[]shared.MarkRecord](`[
			{"courseCode":"MA201","obtainedMarks":40,"maxMarks":50},
			{"courseCode":"CS101","obtainedMarks":45,"maxMarks":50},
			{"courseCode":"PH110","obtainedMarks":45,"maxMarks":50}
		]`),
		timetable: decode[[]shared.TimetableEntry](`[
			{"day":"Friday","startTime":"10:00"},
			{"day":"Monday","startTime":"09:00"}
		]`),
	}
	b := NewBuilder(src, nil)

	first, err := b.Build(context.Background(), testSession(shared.RoleStudent), shared.RoleStudent)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), testSession(shared.RoleStudent), shared.RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 8.1, first.GPA.Overall)
	assert.Equal(t, "Monday", first.Timetable[0].Day)
}
