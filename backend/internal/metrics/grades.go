package metrics

import (
	"sort"

	"portal_dashboard/backend/internal/shared"
)

// DefaultSubject labels marks that carry no course identification.
const DefaultSubject = "Subject"

// MarkView is a normalized exam result.
type MarkView struct {
	ID            string  `json:"id,omitempty"`
	Subject       string  `json:"subject"`
	CourseID      string  `json:"courseId,omitempty"`
	ExamType      string  `json:"examType,omitempty"`
	ObtainedMarks float64 `json:"obtainedMarks"`
	MaxMarks      float64 `json:"maxMarks"`
	Percentage    float64 `json:"percentage"`
	GradePoint    float64 `json:"gradePoint"`
	ExamDate      string  `json:"examDate,omitempty"`
}

// SubjectPoints is the average grade point of one subject.
type SubjectPoints struct {
	Subject string  `json:"subject"`
	Points  float64 `json:"points"`
}

// ScorePercentage returns obtained as a percentage of max, or 0 when max is
// not positive.
func ScorePercentage(obtained, max float64) float64 {
	if max <= 0 {
		return 0
	}
	// Multiply first so whole-number scores land exactly on band edges.
	return obtained * 100 / max
}

// GradePoint bands a score into 5..10. Each band includes its lower bound.
func GradePoint(obtained, max float64) int {
	pct := ScorePercentage(obtained, max)
	switch {
	case pct >= 90:
		return 10
	case pct >= 80:
		return 9
	case pct >= 70:
		return 8
	case pct >= 60:
		return 7
	case pct >= 50:
		return 6
	default:
		return 5
	}
}

// SubjectOf picks the label a mark is grouped under: course code, then the
// raw course code field, then course title.
func SubjectOf(m shared.MarkRecord) string {
	if s := shared.FirstText(m.Course.Code, m.CourseCode, m.Course.Title); s != "" {
		return s
	}
	return DefaultSubject
}

// NormalizeMark fills derived fields of one mark. Negative scores become 0.
// A grade point supplied by the API wins over one computed from the score.
func NormalizeMark(m shared.MarkRecord) MarkView {
	obtained := nonNegative(m.ObtainedMarks.Or(0))
	max := nonNegative(m.MaxMarks.Or(0))

	gp := float64(GradePoint(obtained, max))
	if m.GradePoint.Valid {
		gp = m.GradePoint.Value
	}

	return MarkView{
		ID:            m.Key(),
		Subject:       SubjectOf(m),
		CourseID:      shared.FirstText(m.CourseID, m.Course.ID),
		ExamType:      m.ExamType.String(),
		ObtainedMarks: obtained,
		MaxMarks:      max,
		Percentage:    Round2(ScorePercentage(obtained, max)),
		GradePoint:    gp,
		ExamDate:      m.ExamDate.String(),
	}
}

// NormalizeMarks normalizes every mark, keeping source order.
func NormalizeMarks(marks []shared.MarkRecord) []MarkView {
	out := make([]MarkView, 0, len(marks))
	for _, m := range marks {
		out = append(out, NormalizeMark(m))
	}
	return out
}

// SubjectGPA averages grade points per subject, rounded to two decimals and
// sorted by points descending. Subjects with zero or negative averages are
// kept; use ChartableGPA to drop them.
func SubjectGPA(marks []MarkView) []SubjectPoints {
	type bucket struct {
		totalPoints float64
		count       int
	}

	order := make([]string, 0)
	buckets := make(map[string]*bucket)
	for _, m := range marks {
		b, ok := buckets[m.Subject]
		if !ok {
			b = &bucket{}
			buckets[m.Subject] = b
			order = append(order, m.Subject)
		}
		b.totalPoints += m.GradePoint
		b.count++
	}

	out := make([]SubjectPoints, 0, len(order))
	for _, subject := range order {
		b := buckets[subject]
		out = append(out, SubjectPoints{
			Subject: subject,
			Points:  Round2(b.totalPoints / float64(b.count)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}

// ChartableGPA drops subjects whose average is not positive.
func ChartableGPA(subjects []SubjectPoints) []SubjectPoints {
	out := make([]SubjectPoints, 0, len(subjects))
	for _, s := range subjects {
		if s.Points > 0 {
			out = append(out, s)
		}
	}
	return out
}

// OverallGPA returns kpis.cgpa when it is numeric, otherwise the unweighted
// mean of the subject averages rounded to two decimals, or 0 without marks.
func OverallGPA(kpis shared.KPIs, subjects []SubjectPoints) float64 {
	if cgpa, ok := kpis.Get(shared.KPICGPA); ok {
		return cgpa
	}
	points := make([]float64, 0, len(subjects))
	for _, s := range subjects {
		points = append(points, s.Points)
	}
	return Round2(mean(points))
}
