package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_dashboard/backend/internal/dashboard"
	"portal_dashboard/backend/internal/metrics"
	"portal_dashboard/backend/internal/shared"
)

func sampleBundle() dashboard.Bundle {
	return dashboard.Bundle{
		Role:    shared.RoleStudent,
		KPIs:    map[string]float64{"cgpa": 8.25},
		Sources: map[string]dashboard.Origin{"marks": dashboard.OriginFetched},
		Marks:   []metrics.MarkView{},
		Notices: metrics.NoticeFeed{
			Featured: &metrics.NoticeView{Title: "Exams", Sender: "Admin"},
			Preview:  []metrics.NoticeView{},
			All:      []metrics.NoticeView{{Title: "Exams", Sender: "Admin"}},
		},
		Fees: metrics.FeeView{TotalDue: 500, Records: []metrics.FeeLine{}},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	key := dashboard.SlotKey{UserID: "u1", Role: shared.RoleStudent}

	_, found, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, key, sampleBundle()))

	got, found, err := s.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleBundle(), got)
	assert.NotNil(t, got.Marks, "empty collections survive as empty")
}

func TestMemoryStoreForgetAndPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(func() time.Time { return now })

	require.NoError(t, s.Save(ctx, dashboard.SlotKey{UserID: "u1", Role: shared.RoleStudent}, sampleBundle()))
	require.NoError(t, s.Save(ctx, dashboard.SlotKey{UserID: "u1", Role: shared.RoleAdmin}, sampleBundle()))
	now = now.Add(2 * time.Hour)
	require.NoError(t, s.Save(ctx, dashboard.SlotKey{UserID: "u2", Role: shared.RoleTeacher}, sampleBundle()))
	assert.Equal(t, 3, s.Len())

	n, err := s.Purge(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Forget(ctx, "u2"))
	assert.Zero(t, s.Len())
}
