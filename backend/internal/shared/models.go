// ============================================================================
// backend/internal/shared/models.go
// Records returned by the remote portal API
// ============================================================================

package shared

import "strings"

// ============================================================================
// Roles
// ============================================================================

// Role selects which dashboard layout is aggregated
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole normalizes a role name; ok is false for unknown roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return r, true
	case "faculty":
		return RoleTeacher, true
	default:
		return "", false
	}
}

// ============================================================================
// Dashboard Snapshot
// ============================================================================

// Snapshot is the primary per-role dashboard payload. Its collections are
// only used when the dedicated fetch for the same domain fails.
type Snapshot struct {
	KPIs              KPIs                   `json:"kpis"`
	AttendanceSummary List[AttendanceRecord] `json:"attendanceSummary"`
	RecentMarks       List[MarkRecord]       `json:"recentMarks"`
	Notices           List[Notice]           `json:"notices"`
	TimetablePreview  List[TimetableEntry]   `json:"timetablePreview"`
	ExamSchedule      List[ExamEntry]        `json:"examSchedule"`
	RecentAssignments List[Assignment]       `json:"recentAssignments"`
	Courses           List[Course]           `json:"courses"`
}

// KPI names read by the derivations
const (
	KPICGPA                 = "cgpa"
	KPIAttendancePercentage = "attendancePercentage"
	KPIFeeDue               = "feeDue"
	KPIEnrolledStudents     = "enrolledStudents"
)

// ============================================================================
// Student Records
// ============================================================================

// AttendanceRecord is one course row of the attendance summary
type AttendanceRecord struct {
	CourseID     Text      `json:"courseId"`
	CourseCode   Text      `json:"courseCode"`
	CourseName   Text      `json:"courseName"`
	Course       CourseRef `json:"course"`
	Percentage   Number    `json:"percentage"`
	Present      Number    `json:"present"`
	Absent       Number    `json:"absent"`
	Late         Number    `json:"late"`
	TotalClasses Number    `json:"totalClasses"`
}

// MarkRecord is one exam result
type MarkRecord struct {
	Ident
	CourseID      Text      `json:"courseId"`
	Course        CourseRef `json:"course"`
	CourseCode    Text      `json:"courseCode"`
	ExamType      Text      `json:"examType"`
	ObtainedMarks Number    `json:"obtainedMarks"`
	MaxMarks      Number    `json:"maxMarks"`
	ExamDate      Text      `json:"examDate"`
	GradePoint    Number    `json:"gradePoint"`
}

// FeeSummary is the fees endpoint payload
type FeeSummary struct {
	TotalFee  Number          `json:"totalFee"`
	TotalPaid Number          `json:"totalPaid"`
	TotalDue  Number          `json:"totalDue"`
	Records   List[FeeRecord] `json:"records"`
}

// FeeRecord is one per-term fee line
type FeeRecord struct {
	Ident
	Term    Text   `json:"term"`
	Amount  Number `json:"amount"`
	Paid    Number `json:"paid"`
	Due     Number `json:"due"`
	Status  Text   `json:"status"`
	DueDate Text   `json:"dueDate"`
}

// ============================================================================
// Shared Records
// ============================================================================

// Notice is an announcement posted by staff
type Notice struct {
	Ident
	Title      Text `json:"title"`
	Content    Text `json:"content"`
	Message    Text `json:"message"`
	PosterName Text `json:"posterName"`
	CreatedAt  Text `json:"createdAt"`
}

// Message is an entry of the dedicated messages feed
type Message struct {
	Ident
	Title     Text `json:"title"`
	Message   Text `json:"message"`
	Sender    Text `json:"sender"`
	CreatedAt Text `json:"createdAt"`
}

// TimetableEntry is one weekly class slot; times are zero-padded "HH:MM"
type TimetableEntry struct {
	Ident
	Day        Text      `json:"day"`
	StartTime  Text      `json:"startTime"`
	EndTime    Text      `json:"endTime"`
	Course     CourseRef `json:"course"`
	CourseCode Text      `json:"courseCode"`
	Room       Text      `json:"room"`
	Teacher    Text      `json:"teacherName"`
}

// ExamEntry is one scheduled exam
type ExamEntry struct {
	Ident
	Course     CourseRef `json:"course"`
	CourseCode Text      `json:"courseCode"`
	ExamType   Text      `json:"examType"`
	Date       Text      `json:"date"`
	StartTime  Text      `json:"startTime"`
	Room       Text      `json:"room"`
}

// ============================================================================
// Teacher Records
// ============================================================================

// Assignment is a coursework item created by a teacher
type Assignment struct {
	Ident
	Title            Text      `json:"title"`
	CourseCode       Text      `json:"courseCode"`
	Course           CourseRef `json:"course"`
	SubmissionsCount Number    `json:"submissionsCount"`
	DueDate          Text      `json:"dueDate"`
}

// Course is a course assigned to the teacher
type Course struct {
	Ident
	Code  Text `json:"code"`
	Title Text `json:"title"`
}

// RosterEntry is one enrolled student of a course
type RosterEntry struct {
	Ident
	StudentID Text `json:"studentId"`
	Name      Text `json:"name"`
}

// StudentKey identifies the student behind a roster row, or "" when unknown.
func (r RosterEntry) StudentKey() string {
	return FirstText(r.StudentID, r.ID, r.MongoID)
}
