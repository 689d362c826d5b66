package main

import (
	"errors"
	"fmt"
	"strconv"

	"scrumtool/internal/archive"
	"scrumtool/internal/render"

	"github.com/spf13/cobra"
)

// =============================================================================
// HISTORY COMMANDS - Archived reports
// =============================================================================

var (
	historyLimit   int
	historyNoColor bool
	historyFormat  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived reports, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Render an archived report (an unambiguous ID prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func initHistoryFlags() {
	historyCmd.PersistentFlags().BoolVar(&historyNoColor, "no-color", false, "Disable terminal styling")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Reports to list (0 for all)")
	historyShowCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format: text, markdown or json")
}

func openArchive() (*archive.Store, error) {
	path := cfg.Archive.Path
	if path == "" {
		path = defaultArchivePath
	}
	return archive.Open(path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd.Context(), timeout)
	defer cancel()

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No archived reports")
		return nil
	}

	tbl := render.NewTable("Archived reports",
		render.TextColumn("ID"),
		render.TextColumn("Generated"),
		render.Column{Header: "Board", MaxWidth: 40},
		render.NumberColumn("Cards"),
		render.NumberColumn("Points"),
		render.NumberColumn("Diagnostics"),
		render.Column{Header: "Source", MaxWidth: 60},
	)
	var cards int
	var points float64
	for _, e := range entries {
		cards += e.Cards
		points += e.Points
		tbl.AddRow(
			e.ID,
			e.GeneratedAt.Local().Format("2006-01-02 15:04"),
			e.Board,
			strconv.Itoa(e.Cards),
			strconv.FormatFloat(e.Points, 'f', -1, 64),
			strconv.Itoa(e.Diagnostics),
			e.Source,
		)
	}
	tbl.SetFooter(fmt.Sprintf("Total (%d)", len(entries)), "", "", strconv.Itoa(cards), strconv.FormatFloat(points, 'f', -1, 64))
	return tbl.Write(cmd.OutOrStdout(), historyNoColor)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(historyFormat)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd.Context(), timeout)
	defer cancel()

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := store.Get(ctx, args[0])
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("no archived report with id %q", args[0])
	}
	if err != nil {
		return err
	}
	return render.Write(cmd.OutOrStdout(), format, rep, render.Options{
		NoColor:    historyNoColor,
		TrackLists: len(rep.Lists) > 0,
	})
}
