package dashboard

import (
	"portal_dashboard/backend/internal/metrics"
	"portal_dashboard/backend/internal/shared"
)

// Bundle is everything one dashboard screen renders. Every slice is non-nil
// so the JSON form never carries null collections.
type Bundle struct {
	Role    shared.Role        `json:"role"`
	KPIs    map[string]float64 `json:"kpis"`
	Sources map[string]Origin  `json:"sources"`

	Attendance AttendanceSection       `json:"attendance"`
	Marks      []metrics.MarkView      `json:"marks"`
	GPA        GPASection              `json:"gpa"`
	Fees       metrics.FeeView         `json:"fees"`
	Notices    metrics.NoticeFeed      `json:"notices"`
	Timetable  []metrics.TimetableSlot `json:"timetable"`
	Exams      []metrics.ExamSlot      `json:"exams"`

	Assignments      []metrics.AssignmentView  `json:"assignments"`
	Submissions      SubmissionSection         `json:"submissions"`
	CourseLoad       []metrics.CourseLoadEntry `json:"courseLoad"`
	EnrolledStudents int                       `json:"enrolledStudents"`
}

// AttendanceSection is the per-course attendance table and its overall figure.
type AttendanceSection struct {
	Courses []metrics.AttendanceRow `json:"courses"`
	Overall float64                 `json:"overall"`
}

// GPASection holds subject grade points in list and chart form.
type GPASection struct {
	Subjects []metrics.SubjectPoints `json:"subjects"`
	Chart    []metrics.SubjectPoints `json:"chart"`
	Overall  float64                 `json:"overall"`
}

// SubmissionSection holds submissions per assignment in list and chart form.
type SubmissionSection struct {
	All   []metrics.SubmissionPoint `json:"all"`
	Chart []metrics.SubmissionPoint `json:"chart"`
}

// derive reduces reconciled datasets to the bundle. rosters is aligned with
// r.courses and is nil for roles without course load.
func derive(role shared.Role, snap shared.Snapshot, r reconciled, rosters [][]shared.RosterEntry) Bundle {
	marks := metrics.NormalizeMarks(r.marks)
	subjects := metrics.SubjectGPA(marks)
	attendance := metrics.AttendanceRollup(r.attendance)
	submissions := metrics.SubmissionDistribution(r.assignments)

	var load []metrics.CourseLoadEntry
	if rosters != nil {
		load = metrics.CourseLoad(r.courses, rosters)
	}

	return Bundle{
		Role:    role,
		KPIs:    snap.KPIs.Numeric(),
		Sources: r.origins,
		Attendance: AttendanceSection{
			Courses: attendance,
			Overall: metrics.OverallAttendance(snap.KPIs, attendance),
		},
		Marks: marks,
		GPA: GPASection{
			Subjects: subjects,
			Chart:    metrics.ChartableGPA(subjects),
			Overall:  metrics.OverallGPA(snap.KPIs, subjects),
		},
		Fees:      metrics.Fees(r.fees, snap.KPIs),
		Notices:   metrics.NormalizeNotices(r.messages, r.notices),
		Timetable: metrics.SortTimetable(r.timetable),
		Exams:     metrics.SortExams(r.exams),

		Assignments: metrics.NormalizeAssignments(r.assignments),
		Submissions: SubmissionSection{
			All:   submissions,
			Chart: metrics.ChartableSubmissions(submissions),
		},
		CourseLoad:       nonNil(load),
		EnrolledStudents: metrics.EnrolledStudents(snap.KPIs, rosters),
	}
}
