package metrics

import (
	"math"
	"sort"

	"portal_dashboard/backend/internal/shared"
)

// CourseLoadEntry is the number of students enrolled in one course.
type CourseLoadEntry struct {
	CourseID     string `json:"courseId"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	StudentCount int    `json:"studentCount"`
}

// CourseLoad counts each course's roster, most populated first. rosters is
// index-aligned with courses; a nil roster (failed fetch) counts as zero.
func CourseLoad(courses []shared.Course, rosters [][]shared.RosterEntry) []CourseLoadEntry {
	out := make([]CourseLoadEntry, 0, len(courses))
	for i, c := range courses {
		count := 0
		if i < len(rosters) {
			count = len(rosters[i])
		}
		out = append(out, CourseLoadEntry{
			CourseID:     c.Key(),
			Code:         c.Code.String(),
			Title:        c.Title.String(),
			StudentCount: count,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].StudentCount > out[j].StudentCount })
	return out
}

// EnrolledStudents returns kpis.enrolledStudents when numeric. Otherwise it
// counts distinct students across all rosters, so a student in several of
// the teacher's courses is counted once. Rows without a student id cannot be
// matched and each counts as one student.
func EnrolledStudents(kpis shared.KPIs, rosters [][]shared.RosterEntry) int {
	if v, ok := kpis.Get(shared.KPIEnrolledStudents); ok {
		return int(math.Round(nonNegative(v)))
	}

	seen := make(map[string]struct{})
	anonymous := 0
	for _, roster := range rosters {
		for _, entry := range roster {
			key := entry.StudentKey()
			if key == "" {
				anonymous++
				continue
			}
			seen[key] = struct{}{}
		}
	}
	return len(seen) + anonymous
}
