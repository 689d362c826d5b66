package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"scrumtool/internal/archive"
	"scrumtool/internal/board"
	"scrumtool/internal/browser"
	"scrumtool/internal/logging"
	"scrumtool/internal/render"
	"scrumtool/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// REPORT COMMAND - Sprint Scrum report
// =============================================================================

const defaultArchivePath = ".scrum/history.db"

var (
	reportURLs      []string
	reportFirstDone string
	reportRounding  string
	reportNoLists   bool
	reportFormat    string
	reportArchive   bool
	reportNoColor   bool
	reportPretty    bool
	reportParallel  int
)

var reportCmd = &cobra.Command{
	Use:   "report [snapshot.html...]",
	Short: "Build the sprint Scrum report from board snapshots",
	Long: `Builds one report per board snapshot. Snapshots are saved board pages
(files) or live boards fetched with --url through Chrome.

Problems with the board data (missing points, cards without members) never
stop a report; they are logged as warnings and listed in the output.`,
	RunE: runReport,
}

func initReportFlags() {
	f := reportCmd.Flags()
	f.StringArrayVar(&reportURLs, "url", nil, "Capture a live board (repeatable)")
	f.StringVar(&reportFirstDone, "first-done", "", "Only report on lists from this one to the end of the board")
	f.StringVar(&reportRounding, "rounding", "", "Per-member points rounding: ceil or none")
	f.BoolVar(&reportNoLists, "no-lists", false, "Skip per-list tallies and sum card points directly")
	f.StringVarP(&reportFormat, "format", "f", "text", "Output format: text, markdown or json")
	f.BoolVar(&reportArchive, "archive", false, "Save reports to the history archive")
	f.BoolVar(&reportNoColor, "no-color", false, "Disable terminal styling")
	f.BoolVar(&reportPretty, "pretty", false, "Render markdown for the terminal")
	f.IntVar(&reportParallel, "parallel", 4, "Snapshots read concurrently")
}

// source is one input snapshot and, once loaded, its parsed board.
type source struct {
	name  string
	isURL bool
	board *board.Board
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(reportFormat)
	if err != nil {
		return err
	}
	opts, err := reportOptions(cmd)
	if err != nil {
		return err
	}

	sources := make([]*source, 0, len(args)+len(reportURLs))
	for _, a := range args {
		sources = append(sources, &source{name: a})
	}
	for _, u := range reportURLs {
		sources = append(sources, &source{name: u, isURL: true})
	}
	if len(sources) == 0 {
		return errors.New("no snapshots given (pass files or --url)")
	}

	ctx, cancel := commandContext(cmd.Context(), timeout)
	defer cancel()

	if err := loadSources(ctx, sources, reportParallel); err != nil {
		return err
	}

	var store *archive.Store
	if path := archivePath(); path != "" {
		store, err = archive.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	out := cmd.OutOrStdout()
	for i, src := range sources {
		if i > 0 && format != render.FormatJSON {
			fmt.Fprintln(out)
		}
		if err := reportOne(ctx, out, src, opts, format, store); err != nil {
			return err
		}
	}
	return nil
}

func reportOptions(cmd *cobra.Command) (report.Options, error) {
	opts, err := cfg.ReportOptions()
	if err != nil {
		return opts, err
	}
	if cmd.Flags().Changed("first-done") {
		opts.FirstDoneList = reportFirstDone
	}
	if cmd.Flags().Changed("rounding") {
		if opts.Rounding, err = report.ParseRounding(reportRounding); err != nil {
			return opts, err
		}
	}
	if reportNoLists {
		opts.TrackLists = false
	}
	return opts, nil
}

func archivePath() string {
	if !reportArchive {
		return cfg.Archive.Path
	}
	if cfg.Archive.Path != "" {
		return cfg.Archive.Path
	}
	return defaultArchivePath
}

// loadSources parses every snapshot concurrently. Live boards share one
// Chrome connection.
func loadSources(ctx context.Context, sources []*source, parallel int) error {
	var capturer *browser.Capturer
	for _, s := range sources {
		if s.isURL {
			capturer = browser.NewCapturer(cfg.BrowserOptions())
			defer capturer.Shutdown(context.Background())
			if err := capturer.Start(ctx); err != nil {
				return err
			}
			break
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for _, s := range sources {
		s := s
		g.Go(func() error {
			bd, err := loadSource(gctx, capturer, s)
			if err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			s.board = bd
			logger.Debug("Snapshot parsed",
				zap.String("source", s.name),
				zap.String("summary", bd.Summary()))
			return nil
		})
	}
	return g.Wait()
}

func loadSource(ctx context.Context, c *browser.Capturer, s *source) (*board.Board, error) {
	if s.isURL {
		snap, err := c.Capture(ctx, s.name)
		if err != nil {
			return nil, err
		}
		return snap.Board(cfg.Selectors)
	}

	f, err := os.Open(s.name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return board.Read(f, cfg.Selectors)
}

// diagnosticLogger sends report diagnostics to the log as warnings.
func diagnosticLogger(sourceName string) report.DiagnosticSink {
	log := logging.Get(logging.CategoryReport)
	return report.DiagnosticFunc(func(d report.Diagnostic) {
		log.Warnw(d.Message, "kind", d.Kind, "list", d.List, "source", sourceName)
	})
}

func reportOne(ctx context.Context, w io.Writer, src *source, opts report.Options, format render.Format, store *archive.Store) error {
	sink := diagnosticLogger(src.name)
	rep := report.NewBuilder(opts, sink).BuildBoard(src.board)

	err := render.Write(w, format, rep, render.Options{
		NoColor:    reportNoColor,
		TrackLists: opts.TrackLists,
		Pretty:     reportPretty,
		Sink:       sink,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", src.name, err)
	}

	if store != nil {
		id, err := store.Save(ctx, rep, src.name)
		if err != nil {
			return err
		}
		logger.Info("Report archived", zap.String("id", id), zap.String("source", src.name))
	}
	return nil
}
