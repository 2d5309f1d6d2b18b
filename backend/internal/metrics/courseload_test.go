package metrics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"portal_dashboard/backend/internal/shared"
)

func roster(ids ...string) []shared.RosterEntry {
	out := make([]shared.RosterEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, shared.RosterEntry{StudentID: shared.Text(id)})
	}
	return out
}

func numbered(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return ids
}

func TestCourseLoadSortsAndToleratesFailedRosters(t *testing.T) {
	courses := []shared.Course{
		{Ident: shared.Ident{ID: "c1"}, Code: "CS101"},
		{Ident: shared.Ident{ID: "c2"}, Code: "CS102"},
		{Ident: shared.Ident{ID: "c3"}, Code: "CS103"},
	}
	rosters := [][]shared.RosterEntry{roster(numbered("a", 5)...), nil, roster(numbered("b", 7)...)}

	load := CourseLoad(courses, rosters)
	counts := []int{load[0].StudentCount, load[1].StudentCount, load[2].StudentCount}
	assert.Equal(t, []int{7, 5, 0}, counts)
	assert.Equal(t, "CS103", load[0].Code)
	assert.Equal(t, "CS102", load[2].Code)

	assert.Equal(t, 12, EnrolledStudents(nil, rosters))
	assert.Equal(t, 40, EnrolledStudents(shared.KPIs{shared.KPIEnrolledStudents: shared.Num(40)}, rosters))
}

func TestEnrolledStudentsCountsDistinct(t *testing.T) {
	rosters := [][]shared.RosterEntry{
		roster("s1", "s2", "s3"),
		roster("s2", "s3", "s4"),
		{{Name: "walk-in"}, {Name: "walk-in"}},
	}
	assert.Equal(t, 6, EnrolledStudents(shared.KPIs{}, rosters))
}

func TestCourseLoadShortRosterSlice(t *testing.T) {
	load := CourseLoad([]shared.Course{{Code: "X"}, {Code: "Y"}}, nil)
	assert.Len(t, load, 2)
	assert.Equal(t, 0, load[0].StudentCount)
	assert.Equal(t, 0, EnrolledStudents(nil, nil))
}
