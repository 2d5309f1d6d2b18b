package dashboard

import (
	"portal_dashboard/backend/internal/fetchset"
	"portal_dashboard/backend/internal/shared"
)

// Origin records where a reconciled dataset came from.
type Origin string

const (
	OriginFetched  Origin = "fetched"
	OriginSnapshot Origin = "snapshot"
	OriginDefault  Origin = "default"
)

// Domain names, also used as fetch names in logs.
const (
	DomainAttendance  = "attendance"
	DomainMarks       = "marks"
	DomainFees        = "fees"
	DomainExams       = "exams"
	DomainNotices     = "notices"
	DomainMessages    = "messages"
	DomainTimetable   = "timetable"
	DomainAssignments = "assignments"
	DomainCourses     = "courses"
	DomainRosters     = "rosters"
)

// pick prefers a fulfilled dedicated fetch, even an empty one, then the
// snapshot's field when it was an array, then an empty slice.
func pick[T any](out *fetchset.Outcome[[]T], fallback shared.List[T]) ([]T, Origin) {
	if out.Fulfilled() {
		return nonNil(out.Value), OriginFetched
	}
	if fallback.Present {
		return nonNil(fallback.Items), OriginSnapshot
	}
	return []T{}, OriginDefault
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// reconciled holds one dataset per domain. Domains outside the role's plan
// are empty with OriginDefault.
type reconciled struct {
	attendance  []shared.AttendanceRecord
	marks       []shared.MarkRecord
	fees        *shared.FeeSummary
	exams       []shared.ExamEntry
	notices     []shared.Notice
	messages    []shared.Message
	timetable   []shared.TimetableEntry
	assignments []shared.Assignment
	courses     []shared.Course

	origins map[string]Origin
}

// reconcile merges the settled plan with the snapshot. Only planned domains
// are reported in origins.
func reconcile(p *plan, snap shared.Snapshot) reconciled {
	r := reconciled{origins: make(map[string]Origin)}
	record := func(domain string, planned bool, o Origin) {
		if planned {
			r.origins[domain] = o
		}
	}

	var o Origin
	r.attendance, o = pick(p.attendance, snap.AttendanceSummary)
	record(DomainAttendance, p.attendance != nil, o)

	r.marks, o = pick(p.marks, snap.RecentMarks)
	record(DomainMarks, p.marks != nil, o)

	r.exams, o = pick(p.exams, snap.ExamSchedule)
	record(DomainExams, p.exams != nil, o)

	r.notices, o = pick(p.notices, snap.Notices)
	record(DomainNotices, p.notices != nil, o)

	// The snapshot has no messages field.
	r.messages, o = pick(p.messages, shared.List[shared.Message]{})
	record(DomainMessages, p.messages != nil, o)

	r.timetable, o = pick(p.timetable, snap.TimetablePreview)
	record(DomainTimetable, p.timetable != nil, o)

	r.assignments, o = pick(p.assignments, snap.RecentAssignments)
	record(DomainAssignments, p.assignments != nil, o)

	r.courses, o = pick(p.courses, snap.Courses)
	record(DomainCourses, p.courses != nil, o)

	// Fees have no snapshot collection; the due amount falls back to
	// kpis.feeDue during derivation.
	if p.fees.Fulfilled() && p.fees.Value != nil {
		r.fees = p.fees.Value
		record(DomainFees, true, OriginFetched)
	} else if _, ok := snap.KPIs.Get(shared.KPIFeeDue); ok {
		record(DomainFees, p.fees != nil, OriginSnapshot)
	} else {
		record(DomainFees, p.fees != nil, OriginDefault)
	}

	return r
}
