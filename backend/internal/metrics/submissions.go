package metrics

import (
	"sort"

	"portal_dashboard/backend/internal/shared"
)

// AssignmentView is a normalized teacher assignment.
type AssignmentView struct {
	ID               string  `json:"id,omitempty"`
	Title            string  `json:"title"`
	CourseCode       string  `json:"courseCode,omitempty"`
	SubmissionsCount float64 `json:"submissionsCount"`
	DueDate          string  `json:"dueDate,omitempty"`
}

// SubmissionPoint is one bar/slice of the submission distribution.
type SubmissionPoint struct {
	Subject string  `json:"subject"`
	Points  float64 `json:"points"`
}

func assignmentCode(a shared.Assignment) string {
	return shared.FirstText(a.CourseCode, a.Course.Code)
}

// NormalizeAssignments keeps source order.
func NormalizeAssignments(assignments []shared.Assignment) []AssignmentView {
	out := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, AssignmentView{
			ID:               a.Key(),
			Title:            a.Title.String(),
			CourseCode:       assignmentCode(a),
			SubmissionsCount: a.SubmissionsCount.Or(0),
			DueDate:          a.DueDate.String(),
		})
	}
	return out
}

// SubmissionDistribution labels each assignment by course code (else title)
// with its submission count, highest first.
func SubmissionDistribution(assignments []shared.Assignment) []SubmissionPoint {
	out := make([]SubmissionPoint, 0, len(assignments))
	for _, a := range assignments {
		subject := assignmentCode(a)
		if subject == "" {
			subject = a.Title.String()
		}
		out = append(out, SubmissionPoint{Subject: subject, Points: a.SubmissionsCount.Or(0)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}

// ChartableSubmissions drops entries without positive points, for
// proportional views.
func ChartableSubmissions(points []SubmissionPoint) []SubmissionPoint {
	out := make([]SubmissionPoint, 0, len(points))
	for _, p := range points {
		if p.Points > 0 {
			out = append(out, p)
		}
	}
	return out
}
