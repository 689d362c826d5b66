package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"scrumtool/internal/board"
	"scrumtool/internal/dom"
	"scrumtool/internal/style"
	"scrumtool/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// STYLE COMMAND - Board presentation classes and separators
// =============================================================================

var (
	styleOutput string
	styleWatch  bool
)

var styleCmd = &cobra.Command{
	Use:   "style <snapshot.html>",
	Short: "Apply presentation classes and separators to a board snapshot",
	Long: `Tags the board with a class from the board rules, every matching list
with a class from the list rules, and replaces runs of hyphens in card
text with horizontal rules.

With --watch the snapshot is restyled every time it changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runStyle,
}

func initStyleFlags() {
	styleCmd.Flags().StringVarP(&styleOutput, "output", "o", "", "Output file (default stdout)")
	styleCmd.Flags().BoolVarP(&styleWatch, "watch", "w", false, "Restyle on every change")
}

// restyler applies one compiled configuration to snapshot files.
type restyler struct {
	applier *style.Applier
	sel     *board.Compiled
}

func newRestyler() (*restyler, error) {
	a, err := style.NewApplier(cfg.Style)
	if err != nil {
		return nil, err
	}
	sel, err := cfg.Selectors.Compile()
	if err != nil {
		return nil, err
	}
	return &restyler{applier: a, sel: sel}, nil
}

// restyle returns the styled HTML of the snapshot at path.
func (r *restyler) restyle(path string) ([]byte, style.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, style.Result{}, err
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, style.Result{}, fmt.Errorf("parse %s: %w", path, err)
	}
	res := r.applier.Apply(doc, r.sel)

	var buf bytes.Buffer
	if err := dom.Render(&buf, doc); err != nil {
		return nil, res, fmt.Errorf("render %s: %w", path, err)
	}
	return buf.Bytes(), res, nil
}

func runStyle(cmd *cobra.Command, args []string) error {
	r, err := newRestyler()
	if err != nil {
		return err
	}
	path := args[0]

	run := func(_ context.Context, p string) error {
		data, res, err := r.restyle(p)
		if err != nil {
			return err
		}
		written, err := writeOutput(cmd, styleOutput, data)
		if err != nil {
			return err
		}
		logger.Info("Snapshot styled",
			zap.String("path", p),
			zap.String("board_class", res.BoardClass),
			zap.Int("lists", len(res.ListClasses)),
			zap.Int("separators", res.Separators),
			zap.Bool("written", written))
		return nil
	}

	if !styleWatch {
		return run(cmd.Context(), path)
	}
	if styleOutput == "" || styleOutput == "-" {
		return errors.New("--watch needs --output")
	}

	ctx, cancel := commandContext(cmd.Context(), 0)
	defer cancel()

	w, err := watch.New(path, cfg.GetDebounce(), run)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	st := w.Stats()
	logger.Info("Watch finished", zap.Int("runs", st.Runs), zap.Int("errors", st.Errors))
	return nil
}
