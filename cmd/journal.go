package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/srvxml/internal/docstore"
	"github.com/papapumpkin/srvxml/internal/log"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded edits to server.xml, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the most recent recorded edit to server.xml",
	Long: `Revert the most recent edit that has not been undone yet. Undo refuses to
run if server.xml was changed after that edit, so manual changes are never lost.`,
	Args: cobra.NoArgs,
	RunE: runUndo,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum entries to show (0 for all)")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(undoCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	j, err := s.openJournal(cmd.Context())
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := j.List(cmd.Context(), s.cfg.Server, limit)
	if err != nil {
		return err
	}
	s.printer.History(entries)
	return nil
}

func runUndo(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	j, err := s.openJournal(ctx)
	if err != nil {
		return err
	}
	// Restores are not recorded; the entry is flagged as undone instead.
	ed := docstore.NewEditor(docstore.FileStore{}, docstore.WithLogger(log.WithComponent("docstore")))
	e, err := j.Undo(ctx, ed, s.cfg.Server)
	if err != nil {
		return err
	}
	s.logger.Info().Str(log.FieldEntryID, e.ID).Str(log.FieldOp, e.Op.String()).Msg("edit undone")
	s.printer.Undone(e)
	return nil
}
