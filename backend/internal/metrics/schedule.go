package metrics

import (
	"sort"
	"strings"
	"time"

	"portal_dashboard/backend/internal/shared"
)

var weekdayRank = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

const unknownDayRank = 7

// dayRank orders weekdays Monday first. Three-letter abbreviations are
// accepted; unrecognised days sort last.
func dayRank(day string) int {
	d := strings.ToLower(strings.TrimSpace(day))
	if r, ok := weekdayRank[d]; ok {
		return r
	}
	if len(d) >= 3 {
		for name, r := range weekdayRank {
			if strings.HasPrefix(name, d) {
				return r
			}
		}
	}
	return unknownDayRank
}

// TimetableSlot is one normalized weekly class.
type TimetableSlot struct {
	ID          string `json:"id,omitempty"`
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	CourseCode  string `json:"courseCode,omitempty"`
	CourseTitle string `json:"courseTitle,omitempty"`
	Room        string `json:"room,omitempty"`
	Teacher     string `json:"teacher,omitempty"`
}

// SortTimetable orders slots by weekday, then by start time. Start times
// compare as strings, which is correct for zero-padded 24-hour "HH:MM".
func SortTimetable(entries []shared.TimetableEntry) []TimetableSlot {
	out := make([]TimetableSlot, 0, len(entries))
	for _, e := range entries {
		out = append(out, TimetableSlot{
			ID:          e.Key(),
			Day:         e.Day.String(),
			StartTime:   e.StartTime.String(),
			EndTime:     e.EndTime.String(),
			CourseCode:  shared.FirstText(e.Course.Code, e.CourseCode),
			CourseTitle: e.Course.Title.String(),
			Room:        e.Room.String(),
			Teacher:     e.Teacher.String(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := dayRank(out[i].Day), dayRank(out[j].Day)
		if ri != rj {
			return ri < rj
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// ExamSlot is one normalized exam.
type ExamSlot struct {
	ID          string `json:"id,omitempty"`
	CourseCode  string `json:"courseCode,omitempty"`
	CourseTitle string `json:"courseTitle,omitempty"`
	ExamType    string `json:"examType,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime,omitempty"`
	Room        string `json:"room,omitempty"`
}

var examDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseExamDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range examDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortExams orders exams by date, earliest first, then by start time.
// Undated or unparseable exams keep their source order after the rest.
func SortExams(entries []shared.ExamEntry) []ExamSlot {
	type keyed struct {
		slot  ExamSlot
		at    time.Time
		dated bool
	}

	rows := make([]keyed, 0, len(entries))
	for _, e := range entries {
		at, ok := parseExamDate(e.Date.String())
		rows = append(rows, keyed{
			slot: ExamSlot{
				ID:          e.Key(),
				CourseCode:  shared.FirstText(e.Course.Code, e.CourseCode),
				CourseTitle: e.Course.Title.String(),
				ExamType:    e.ExamType.String(),
				Date:        e.Date.String(),
				StartTime:   e.StartTime.String(),
				Room:        e.Room.String(),
			},
			at:    at,
			dated: ok,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.dated != b.dated {
			return a.dated
		}
		if !a.dated {
			return false
		}
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.slot.StartTime < b.slot.StartTime
	})

	out := make([]ExamSlot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.slot)
	}
	return out
}
