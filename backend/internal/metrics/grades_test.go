package metrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_dashboard/backend/internal/shared"
)

func decodeMarks(t *testing.T, raw string) []shared.MarkRecord {
	t.Helper()
	var list shared.List[shared.MarkRecord]
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	return list.Items
}

func TestGradePointBands(t *testing.T) {
	tests := []struct {
		obtained, max float64
		want          int
	}{
		{90, 100, 10},
		{45, 50, 10},
		{89.99, 100, 9},
		{80, 100, 9},
		{35, 50, 8},
		{60, 100, 7},
		{50, 100, 6},
		{49.99, 100, 5},
		{0, 100, 5},
		{10, 0, 5},
		{10, -5, 5},
		{120, 100, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradePoint(tt.obtained, tt.max), "GradePoint(%v, %v)", tt.obtained, tt.max)
	}
}

func TestGradePointMonotonic(t *testing.T) {
	valid := map[int]bool{5: true, 6: true, 7: true, 8: true, 9: true, 10: true}
	for _, max := range []float64{7, 20, 50, 100, 150} {
		prev := 0
		for obtained := 0.0; obtained <= max; obtained += 0.5 {
			gp := GradePoint(obtained, max)
			assert.True(t, valid[gp], "unexpected grade point %d", gp)
			assert.GreaterOrEqual(t, gp, prev, "obtained=%v max=%v", obtained, max)
			prev = gp
		}
	}
}

func TestSingleMarkScenario(t *testing.T) {
	marks := NormalizeMarks(decodeMarks(t, `[{"course":{"code":"CS101"},"obtainedMarks":46,"maxMarks":50}]`))
	require.Len(t, marks, 1)
	assert.Equal(t, 10.0, marks[0].GradePoint)
	assert.Equal(t, 92.0, marks[0].Percentage)
	assert.Equal(t, "CS101", marks[0].Subject)

	subjects := SubjectGPA(marks)
	assert.Equal(t, []SubjectPoints{{Subject: "CS101", Points: 10}}, subjects)
	assert.Equal(t, 10.0, OverallGPA(shared.KPIs{}, subjects))
}

func TestSubjectIdentifierPrecedence(t *testing.T) {
	marks := decodeMarks(t, `[
		{"course":{"code":"MA201","title":"Calculus"},"courseCode":"X","obtainedMarks":1,"maxMarks":1},
		{"course":"64fa0c","courseCode":"PH110","obtainedMarks":1,"maxMarks":1},
		{"course":{"title":"History"},"obtainedMarks":1,"maxMarks":1},
		{"obtainedMarks":1,"maxMarks":1}
	]`)

	var got []string
	for _, m := range marks {
		got = append(got, SubjectOf(m))
	}
	assert.Equal(t, []string{"MA201", "PH110", "History", DefaultSubject}, got)
}

func TestSubjectGPAAveragesAndSorts(t *testing.T) {
	marks := NormalizeMarks(decodeMarks(t, `[
		{"courseCode":"CS101","obtainedMarks":30,"maxMarks":50},
		{"courseCode":"MA201","obtainedMarks":95,"maxMarks":100},
		{"courseCode":"CS101","obtainedMarks":48,"maxMarks":50},
		{"courseCode":"EN100","gradePoint":0},
		{"courseCode":"MA201","gradePoint":"8.5"}
	]`))

	subjects := SubjectGPA(marks)
	assert.Equal(t, []SubjectPoints{
		{Subject: "MA201", Points: 9.25},
		{Subject: "CS101", Points: 8.5},
		{Subject: "EN100", Points: 0},
	}, subjects)

	assert.Equal(t, []SubjectPoints{
		{Subject: "MA201", Points: 9.25},
		{Subject: "CS101", Points: 8.5},
	}, ChartableGPA(subjects))
}

func TestOverallGPA(t *testing.T) {
	subjects := []SubjectPoints{{"A", 9.25}, {"B", 8.5}, {"C", 7}}

	t.Run("explicit cgpa wins", func(t *testing.T) {
		kpis := shared.KPIs{shared.KPICGPA: shared.Num(7.91)}
		assert.Equal(t, 7.91, OverallGPA(kpis, subjects))
	})

	t.Run("non numeric cgpa ignored", func(t *testing.T) {
		kpis := shared.KPIs{shared.KPICGPA: {}}
		assert.Equal(t, 8.25, OverallGPA(kpis, subjects))
	})

	t.Run("mean is stable when fed back", func(t *testing.T) {
		first := OverallGPA(nil, subjects)
		again := OverallGPA(nil, []SubjectPoints{{"all", first}})
		assert.Equal(t, first, again)
	})

	t.Run("no marks", func(t *testing.T) {
		assert.Equal(t, 0.0, OverallGPA(nil, nil))
	})
}

func TestNormalizeMarkClampsNegativeScores(t *testing.T) {
	m := NormalizeMark(shared.MarkRecord{ObtainedMarks: shared.Num(-4), MaxMarks: shared.Num(20)})
	assert.Equal(t, 0.0, m.ObtainedMarks)
	assert.Equal(t, 5.0, m.GradePoint)
	assert.Equal(t, DefaultSubject, m.Subject)
}
