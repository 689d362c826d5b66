package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"scrumtool/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newReport(id string, at time.Time, points float64) *report.Report {
	rep := &report.Report{ID: id, GeneratedAt: at, Board: "Sprint", Points: points, Cards: 2}
	l := &report.List{Name: "Done", Points: points, Cards: 2}
	l.Member("Ana").AddPoints(points)
	rep.AddList(l)
	rep.Member("Ana").AddPoints(points)
	rep.Diagnostics = []report.Diagnostic{{Kind: report.MissingCardPoints, Message: "No points on card x"}}
	return rep
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveGetRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	rep := newReport("11111111-aaaa", at, 13)
	id, err := s.Save(ctx, rep, "board.html")
	require.NoError(t, err)
	assert.Equal(t, "11111111-aaaa", id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.True(t, at.Equal(got.GeneratedAt))
	assert.Equal(t, 13.0, got.Points)
	require.Len(t, got.Lists, 1)
	assert.Equal(t, "Ana", got.Lists[0].Members[0].Name)
	require.Len(t, got.Diagnostics, 1)

	m, ok := got.FindMember("Ana")
	require.True(t, ok)
	assert.Same(t, m, got.Member("Ana"))
}

func TestStore_SaveAssignsID(t *testing.T) {
	s := openTemp(t)
	rep := &report.Report{}
	id, err := s.Save(context.Background(), rep, "x")
	require.NoError(t, err)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rep.ID)
	assert.False(t, rep.GeneratedAt.IsZero())
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a1", "b2", "c3"} {
		_, err := s.Save(ctx, newReport(id, base.Add(time.Duration(i)*time.Hour), float64(i)), "src-"+id)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c3", "b2", "a1"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "src-c3", all[0].Source)
	assert.Equal(t, 1, all[0].Diagnostics)
	assert.Equal(t, 2, all[0].Cards)

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	at := time.Now()
	_, err := s.Save(ctx, newReport("same", at, 1), "one")
	require.NoError(t, err)
	_, err = s.Save(ctx, newReport("same", at, 9), "two")
	require.NoError(t, err)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 9.0, all[0].Points)
	assert.Equal(t, "two", all[0].Source)
}

func TestStore_GetNotFoundAndPrefix(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	for _, id := range []string{"abc-1", "abd-2"} {
		_, err := s.Save(ctx, newReport(id, time.Now(), 1), "")
		require.NoError(t, err)
	}

	_, err := s.Get(ctx, "zzz")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc-1", got.ID)

	_, err = s.Get(ctx, "ab")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = s.Get(ctx, "a_c")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Save(context.Background(), newReport("m", time.Now(), 2), "mem")
	require.NoError(t, err)
	all, err := s.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
