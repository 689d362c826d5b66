package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = filepath.Join("..", "..", "internal", "board", "testdata", "sprint.html")

// resetFlags restores every flag to its default between executions of the
// shared command tree.
func resetFlags() {
	sets := []*pflag.FlagSet{rootCmd.PersistentFlags(), historyCmd.PersistentFlags()}
	for _, c := range []*cobra.Command{reportCmd, styleCmd, captureCmd, historyCmd, historyShowCmd} {
		sets = append(sets, c.Flags())
	}
	for _, fs := range sets {
		fs.VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"SCRUM_FIRST_DONE_LIST", "SCRUM_ROUNDING", "SCRUM_ORIGIN", "SCRUM_ARCHIVE_PATH", "SCRUM_LOG_LEVEL", "SCRUM_LOG_JSON"} {
		t.Setenv(k, "")
	}
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func noConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.yaml")
}

func TestReportCommand_Text(t *testing.T) {
	out, err := execute(t, "report", "--config", noConfig(t), "--no-color", fixture)
	require.NoError(t, err)

	assert.Contains(t, out, "SCRUM REPORT FOR CURRENT SPRINT")
	assert.Contains(t, out, "  Board: Engineering Sprint 4 | Trello\n")
	assert.Contains(t, out, " Global \n  Cards: 7\n  Points: 20\n  Lists: 4\n  Members: 3\n")
	assert.Contains(t, out, " Members \n  Ana Lima\n    Cards: 3\n    Points: 13\n")
	assert.Contains(t, out, "===== END =====")
}

func TestReportCommand_JSONFirstDone(t *testing.T) {
	out, err := execute(t, "report", "--config", noConfig(t), "--format", "json", "--first-done", "Done", fixture)
	require.NoError(t, err)

	var rep struct {
		Points float64 `json:"points"`
		Cards  int     `json:"cards"`
		Lists  []struct {
			Name string `json:"name"`
		} `json:"lists"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 7.0, rep.Points)
	assert.Equal(t, 4, rep.Cards)
	require.Len(t, rep.Lists, 2)
	assert.Equal(t, "Done", rep.Lists[0].Name)
}

func TestReportCommand_ConfigAndFlagPrecedence(t *testing.T) {
	cfgPath := writeConfig(t, "report:\n  first_done_list: Released\n")

	out, err := execute(t, "report", "--config", cfgPath, "--format", "json", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, `"points": 0`)

	out, err = execute(t, "report", "--config", cfgPath, "--format", "json", "--first-done", "", "--no-lists", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, `"points": 22`)
	assert.Contains(t, out, `"lists": null`)
}

func TestReportCommand_MultipleSnapshots(t *testing.T) {
	out, err := execute(t, "report", "--config", noConfig(t), "--no-color", fixture, fixture)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "SCRUM REPORT FOR CURRENT SPRINT"))
}

func TestReportCommand_Errors(t *testing.T) {
	_, err := execute(t, "report", "--config", noConfig(t))
	assert.ErrorContains(t, err, "no snapshots given")

	_, err = execute(t, "report", "--config", noConfig(t), "--format", "xml", fixture)
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "report", "--config", noConfig(t), "--rounding", "floor", fixture)
	assert.ErrorContains(t, err, "unknown rounding")

	_, err = execute(t, "report", "--config", noConfig(t), filepath.Join(t.TempDir(), "gone.html"))
	assert.ErrorContains(t, err, "gone.html")

	_, err = execute(t, "report", "--config", writeConfig(t, "report:\n  rounding: floor\n"), fixture)
	assert.ErrorContains(t, err, "invalid report")
}

func TestReportArchiveAndHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	cfgPath := writeConfig(t, "archive:\n  path: "+dbPath+"\n")

	out, err := execute(t, "report", "--config", cfgPath, "--format", "json", fixture)
	require.NoError(t, err)
	var rep struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.NotEmpty(t, rep.ID)

	out, err = execute(t, "history", "--config", cfgPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Archived reports")
	assert.Contains(t, out, rep.ID)
	assert.Contains(t, out, "Engineering Sprint 4 | Trello")
	assert.Contains(t, out, "Total (1)")

	out, err = execute(t, "history", "show", rep.ID[:8], "--config", cfgPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "  Points: 20\n")

	_, err = execute(t, "history", "show", "nope", "--config", cfgPath)
	assert.ErrorContains(t, err, `no archived report with id "nope"`)
}

func TestHistory_Empty(t *testing.T) {
	cfgPath := writeConfig(t, "archive:\n  path: "+filepath.Join(t.TempDir(), "h.db")+"\n")
	out, err := execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "No archived reports\n", out)
}

func TestStyleCommand(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "styled.html")
	_, err := execute(t, "style", "--config", noConfig(t), fixture, "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "separator-card")
	assert.Contains(t, html, "<hr/>")
	assert.Contains(t, html, "doing")
	assert.Contains(t, html, "done")

	out, err := execute(t, "style", "--config", noConfig(t), fixture)
	require.NoError(t, err)
	assert.Equal(t, html, out)
}

func TestStyleCommand_WatchNeedsOutput(t *testing.T) {
	_, err := execute(t, "style", "--config", noConfig(t), "--watch", fixture)
	assert.ErrorContains(t, err, "--watch needs --output")
}

func TestWriteOutput_SkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	cmd := &cobra.Command{}

	written, err := writeOutput(cmd, path, []byte("a"))
	require.NoError(t, err)
	assert.True(t, written)

	written, err = writeOutput(cmd, path, []byte("a"))
	require.NoError(t, err)
	assert.False(t, written)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	written, err = writeOutput(cmd, "-", []byte("b"))
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "b", buf.String())
}
