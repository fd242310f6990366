package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/srvxml/internal/docstore"
	"github.com/papapumpkin/srvxml/internal/log"
	"github.com/papapumpkin/srvxml/internal/serverxml"
	"github.com/papapumpkin/srvxml/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report features added to or removed from server.xml as it changes",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	w, err := docstore.NewWatcher(s.cfg.Server)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		return err
	}

	ctx, cancel := setupSignalContext(cmd.Context(), s.printer)
	defer cancel()

	s.printer.Info("watching " + w.Path + " (ctrl-c to stop)")
	return watchDocument(ctx, docstore.FileStore{}, w.Path, w.Events, s.printer)
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(parent context.Context, printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// watchDocument prints feature changes for each event until ctx is done or
// events is closed. A document that does not parse is reported and skipped;
// the next write usually fixes it.
func watchDocument(ctx context.Context, store docstore.Store, path string, events <-chan docstore.Event, printer *ui.Printer) error {
	logger := log.WithComponent("watch")

	current := readFeatures(ctx, store, path, printer)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			logger.Debug().Str(log.FieldPath, ev.Path).Int("kind", int(ev.Kind)).Msg("document event")
			if ev.Kind == docstore.EventRemoved {
				printer.Removed(path)
				current = nil
				continue
			}
			next := readFeatures(ctx, store, path, printer)
			if next == nil {
				continue
			}
			added, removed := featureDiff(current, next)
			printer.Changes(path, added, removed)
			current = next
		}
	}
}

// readFeatures returns the declared feature ids, or nil after reporting why
// they could not be read.
func readFeatures(ctx context.Context, store docstore.Store, path string, printer *ui.Printer) []string {
	data, err := store.Read(ctx, path)
	if err != nil {
		printer.Warn(err.Error())
		return nil
	}
	ids, err := serverxml.Features(data)
	if err != nil {
		printer.Warn(err.Error())
		return nil
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}

// featureDiff returns ids present only in after and ids present only in
// before, each in the order of its source list.
func featureDiff(before, after []string) (added, removed []string) {
	inBefore := make(map[string]bool, len(before))
	for _, id := range before {
		inBefore[id] = true
	}
	inAfter := make(map[string]bool, len(after))
	for _, id := range after {
		inAfter[id] = true
		if !inBefore[id] {
			added = append(added, id)
		}
	}
	for _, id := range before {
		if !inAfter[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}
