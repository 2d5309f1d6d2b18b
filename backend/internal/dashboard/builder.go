package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portal_dashboard/backend/internal/fetchset"
	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

// Builder runs aggregation cycles against a Source.
type Builder struct {
	source Source
	log    logrus.FieldLogger
}

// NewBuilder returns a Builder. A nil log discards cycle logs.
func NewBuilder(source Source, log logrus.FieldLogger) *Builder {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Builder{source: source, log: log}
}

// Build runs one cycle for role on behalf of sess. The snapshot is fetched
// first and its failure aborts the cycle with a status-classified error;
// every later failure degrades to the snapshot field or an empty default.
func (b *Builder) Build(ctx context.Context, sess session.Context, requested shared.Role) (Bundle, error) {
	role, ok := shared.ParseRole(string(requested))
	if !ok {
		return Bundle{}, status.Errorf(codes.InvalidArgument, "unknown dashboard role %q", requested)
	}

	start := time.Now()
	entry := b.log.WithFields(logrus.Fields{
		"cycle": uuid.NewString(),
		"role":  role,
		"user":  sess.User().ID,
	})

	snap, err := b.source.Snapshot(ctx, sess, role)
	if err != nil {
		entry.WithError(err).Warn("Dashboard snapshot failed")
		return Bundle{}, snapshotError(role, err)
	}

	p := planFor(b.source, sess, role)
	report := p.set.Wait(ctx)
	logReport(entry, report)

	r := reconcile(p, snap)

	var rosters [][]shared.RosterEntry
	if role == shared.RoleTeacher {
		rosters = b.fetchRosters(ctx, entry, sess, r.courses)
		r.origins[DomainRosters] = OriginFetched
	}

	bundle := derive(role, snap, r, rosters)
	entry.WithFields(logrus.Fields{
		"sources":  len(report),
		"failed":   len(report.Failed()),
		"duration": time.Since(start),
	}).Info("Dashboard bundle built")
	return bundle, nil
}

// plan holds the outcome slots of one role's secondary sources. Slots for
// sources outside the plan stay nil.
type plan struct {
	set *fetchset.Set

	attendance  *fetchset.Outcome[[]shared.AttendanceRecord]
	marks       *fetchset.Outcome[[]shared.MarkRecord]
	fees        *fetchset.Outcome[*shared.FeeSummary]
	exams       *fetchset.Outcome[[]shared.ExamEntry]
	notices     *fetchset.Outcome[[]shared.Notice]
	messages    *fetchset.Outcome[[]shared.Message]
	timetable   *fetchset.Outcome[[]shared.TimetableEntry]
	assignments *fetchset.Outcome[[]shared.Assignment]
	courses     *fetchset.Outcome[[]shared.Course]
}

func planFor(src Source, sess session.Context, role shared.Role) *plan {
	p := &plan{set: &fetchset.Set{}}

	if role == shared.RoleStudent {
		p.attendance = fetchset.Add(p.set, DomainAttendance, func(ctx context.Context) ([]shared.AttendanceRecord, error) {
			return src.AttendanceSummary(ctx, sess)
		})
		p.marks = fetchset.Add(p.set, DomainMarks, func(ctx context.Context) ([]shared.MarkRecord, error) {
			return src.Marks(ctx, sess)
		})
	}

	p.notices = fetchset.Add(p.set, DomainNotices, func(ctx context.Context) ([]shared.Notice, error) {
		return src.Notices(ctx, sess)
	})
	p.messages = fetchset.Add(p.set, DomainMessages, func(ctx context.Context) ([]shared.Message, error) {
		return src.Messages(ctx, sess)
	})

	if role == shared.RoleStudent || role == shared.RoleTeacher {
		p.timetable = fetchset.Add(p.set, DomainTimetable, func(ctx context.Context) ([]shared.TimetableEntry, error) {
			return src.Timetable(ctx, sess, role)
		})
	}

	switch role {
	case shared.RoleStudent:
		p.exams = fetchset.Add(p.set, DomainExams, func(ctx context.Context) ([]shared.ExamEntry, error) {
			return src.ExamSchedule(ctx, sess)
		})
		p.fees = fetchset.Add(p.set, DomainFees, func(ctx context.Context) (*shared.FeeSummary, error) {
			return src.Fees(ctx, sess)
		})
	case shared.RoleTeacher:
		p.assignments = fetchset.Add(p.set, DomainAssignments, func(ctx context.Context) ([]shared.Assignment, error) {
			return src.Assignments(ctx, sess)
		})
		p.courses = fetchset.Add(p.set, DomainCourses, func(ctx context.Context) ([]shared.Course, error) {
			return src.Courses(ctx, sess)
		})
	}

	return p
}

// fetchRosters fetches one roster per course. A failed roster, or a course
// without an id, counts as an empty roster.
func (b *Builder) fetchRosters(ctx context.Context, entry logrus.FieldLogger, sess session.Context, courses []shared.Course) [][]shared.RosterEntry {
	set := &fetchset.Set{}
	outcomes := make([]*fetchset.Outcome[[]shared.RosterEntry], len(courses))
	for i, c := range courses {
		id := c.Key()
		if id == "" {
			continue
		}
		outcomes[i] = fetchset.Add(set, DomainRosters+":"+id, func(ctx context.Context) ([]shared.RosterEntry, error) {
			return b.source.CourseRoster(ctx, sess, id)
		})
	}

	report := set.Wait(ctx)
	logReport(entry, report)

	rosters := make([][]shared.RosterEntry, len(courses))
	for i, out := range outcomes {
		if out.Fulfilled() {
			rosters[i] = nonNil(out.Value)
		} else {
			rosters[i] = []shared.RosterEntry{}
		}
	}
	return rosters
}

func logReport(entry logrus.FieldLogger, report fetchset.Report) {
	for _, s := range report {
		if s.Err != nil {
			entry.WithError(s.Err).WithField("source", s.Name).Warn("Dashboard source failed, using fallback")
			continue
		}
		entry.WithFields(logrus.Fields{
			"source":   s.Name,
			"duration": s.Duration,
		}).Debug("Dashboard source fetched")
	}
}
