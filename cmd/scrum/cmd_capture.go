package main

import (
	"context"

	"scrumtool/internal/browser"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// CAPTURE COMMAND - Save a live board snapshot
// =============================================================================

var captureOutput string

var captureCmd = &cobra.Command{
	Use:   "capture <url>",
	Short: "Save the rendered HTML of a live board",
	Args:  cobra.ExactArgs(1),
	RunE:  runCapture,
}

func initCaptureFlags() {
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "Output file (default stdout)")
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd.Context(), timeout)
	defer cancel()

	c := browser.NewCapturer(cfg.BrowserOptions())
	defer c.Shutdown(context.Background())

	snap, err := c.Capture(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := writeOutput(cmd, captureOutput, []byte(snap.HTML)); err != nil {
		return err
	}
	logger.Info("Board captured",
		zap.String("url", snap.URL),
		zap.String("title", snap.Title),
		zap.Int("bytes", len(snap.HTML)))
	return nil
}
