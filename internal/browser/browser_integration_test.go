//go:build integration

package browser_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"scrumtool/internal/board"
	"scrumtool/internal/browser"
	"scrumtool/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturer_Capture_Integration(t *testing.T) {
	page, err := os.ReadFile("../board/testdata/sprint.html")
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write(page)
	}))
	defer ts.Close()

	cfg := browser.DefaultConfig()
	cfg.NavigationTimeout = 10 * time.Second

	c := browser.NewCapturer(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer func() {
		if err := c.Shutdown(context.Background()); err != nil {
			t.Logf("Shutdown error: %v", err)
		}
	}()

	require.NoError(t, c.Start(ctx), "Failed to start browser")
	require.NotEmpty(t, c.ControlURL())

	snap, err := c.Capture(ctx, ts.URL+"/b/sprint")
	require.NoError(t, err)
	assert.Equal(t, ts.URL, snap.Origin)
	assert.Equal(t, "Engineering Sprint 4 | Trello", snap.Title)

	bd, err := snap.Board(board.DefaultSelectors())
	require.NoError(t, err)
	assert.Equal(t, []string{"Backlog", "In Progress", "Done", "Released"}, bd.ListNames())

	rep := report.NewBuilder(report.DefaultOptions(), nil).BuildBoard(bd)
	assert.Equal(t, 20.0, rep.Points)
	assert.Equal(t, ts.URL+"/c/fff666/6-docs", rep.Diagnostics[len(rep.Diagnostics)-2].Card)
}

func TestCapturer_WaitSelectorTimeout_Integration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>not a board</p></body></html>"))
	}))
	defer ts.Close()

	cfg := browser.DefaultConfig()
	cfg.NavigationTimeout = 2 * time.Second
	c := browser.NewCapturer(cfg)
	defer c.Shutdown(context.Background())

	_, err := c.Capture(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".list")
}
