package metrics

import (
	"sort"

	"portal_dashboard/backend/internal/shared"
)

// AttendanceRow is the per-course attendance rollup.
type AttendanceRow struct {
	CourseID     string  `json:"courseId,omitempty"`
	CourseCode   string  `json:"courseCode,omitempty"`
	CourseName   string  `json:"courseName,omitempty"`
	Percentage   float64 `json:"percentage"`
	Present      float64 `json:"present"`
	Absent       float64 `json:"absent"`
	Late         float64 `json:"late"`
	TotalClasses float64 `json:"totalClasses"`
}

// AttendancePercentage uses the source percentage when it is numeric and
// otherwise present/(present+absent+late). Either way the result is clamped
// to [0, 100] and rounded to two decimals.
func AttendancePercentage(r shared.AttendanceRecord) float64 {
	if r.Percentage.Valid {
		return Round2(ClampPercent(r.Percentage.Value))
	}

	present := nonNegative(r.Present.Or(0))
	held := present + nonNegative(r.Absent.Or(0)) + nonNegative(r.Late.Or(0))
	if held == 0 {
		return 0
	}
	return Round2(ClampPercent(present * 100 / held))
}

// AttendanceRollup normalizes every record and ranks them by percentage,
// highest first.
func AttendanceRollup(records []shared.AttendanceRecord) []AttendanceRow {
	rows := make([]AttendanceRow, 0, len(records))
	for _, r := range records {
		present := nonNegative(r.Present.Or(0))
		absent := nonNegative(r.Absent.Or(0))
		late := nonNegative(r.Late.Or(0))

		total := nonNegative(r.TotalClasses.Or(0))
		if counted := present + absent + late; total < counted {
			total = counted
		}

		rows = append(rows, AttendanceRow{
			CourseID:     shared.FirstText(r.CourseID, r.Course.ID),
			CourseCode:   shared.FirstText(r.CourseCode, r.Course.Code),
			CourseName:   shared.FirstText(r.CourseName, r.Course.Title),
			Percentage:   AttendancePercentage(r),
			Present:      present,
			Absent:       absent,
			Late:         late,
			TotalClasses: total,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Percentage > rows[j].Percentage })
	return rows
}

// OverallAttendance returns kpis.attendancePercentage when numeric, otherwise
// the unweighted mean of the per-course percentages.
func OverallAttendance(kpis shared.KPIs, rows []AttendanceRow) float64 {
	if pct, ok := kpis.Get(shared.KPIAttendancePercentage); ok {
		return Round2(ClampPercent(pct))
	}
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Percentage)
	}
	return Round2(ClampPercent(mean(values)))
}
