package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func waitRun(t *testing.T, runs <-chan string) string {
	t.Helper()
	select {
	case p := <-runs:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not invoked")
		return ""
	}
}

func TestWatcher_InitialRunAndChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "board.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>one</p>"), 0644))

	runs := make(chan string, 8)
	w, err := New(path, 20*time.Millisecond, func(_ context.Context, p string) error {
		runs <- p
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Equal(t, w.Path(), waitRun(t, runs))

	require.NoError(t, os.WriteFile(path, []byte("<p>two</p>"), 0644))
	assert.Equal(t, w.Path(), waitRun(t, runs))

	w.Stop()
	st := w.Stats()
	assert.GreaterOrEqual(t, st.Runs, 2)
	assert.GreaterOrEqual(t, st.Events, 1)
	assert.Zero(t, st.Errors)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "board.html")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	runs := make(chan string, 8)
	w, err := New(path, 10*time.Millisecond, func(_ context.Context, p string) error {
		runs <- p
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	waitRun(t, runs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.html"), []byte("x"), 0644))
	time.Sleep(150 * time.Millisecond)
	w.Stop()

	assert.Empty(t, runs)
	assert.Equal(t, 1, w.Stats().Runs)
}

func TestWatcher_HandlerErrorsAreCounted(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "board.html")
	done := make(chan struct{})
	w, err := New(path, 0, func(context.Context, string) error {
		defer close(done)
		return errors.New("boom")
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	<-done
	w.Stop()

	st := w.Stats()
	assert.Equal(t, 1, st.Errors)
	assert.Equal(t, "boom", st.LastError)
}

func TestWatcher_ContextCancelStopsLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := New(filepath.Join(t.TempDir(), "b.html"), 0, func(context.Context, string) error { return nil })
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not exit")
	}
	w.Stop()
}

func TestNew_NilHandler(t *testing.T) {
	_, err := New("x.html", 0, nil)
	assert.Error(t, err)
}

func TestStart_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "b.html"), 0, func(context.Context, string) error { return nil })
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
}
