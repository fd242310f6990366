package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/srvxml/internal/catalog"
	"github.com/papapumpkin/srvxml/internal/config"
	"github.com/papapumpkin/srvxml/internal/docstore"
	"github.com/papapumpkin/srvxml/internal/journal"
	"github.com/papapumpkin/srvxml/internal/log"
	"github.com/papapumpkin/srvxml/internal/ui"
)

// errJournalDisabled is returned by journal commands when journal=false.
var errJournalDisabled = errors.New("edit journal is disabled (set journal: true)")

// session bundles what every command needs: configuration, a printer bound
// to the command's writers, and a logger.
type session struct {
	cfg     config.Config
	printer *ui.Printer
	logger  zerolog.Logger
	journal *journal.Journal
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Configure(log.Config{Level: cfg.LogLevel, Output: cmd.ErrOrStderr(), Console: true})
	return &session{
		cfg:     cfg,
		printer: ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		logger:  log.WithComponent("cmd"),
	}, nil
}

// close releases the journal if one was opened.
func (s *session) close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("closing journal")
		}
		s.journal = nil
	}
}

// loadCatalog builds the feature catalog from the configured source.
func (s *session) loadCatalog() (*catalog.Catalog, error) {
	path, err := s.cfg.ResolveCatalog()
	if err != nil {
		return nil, err
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str(log.FieldPath, path).Int(log.FieldCount, c.Len()).Msg("catalog loaded")
	return c, nil
}

// openJournal opens the edit journal, or returns errJournalDisabled.
func (s *session) openJournal(ctx context.Context) (*journal.Journal, error) {
	if !s.cfg.Journal {
		return nil, errJournalDisabled
	}
	if s.journal == nil {
		j, err := journal.Open(ctx, s.cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		s.journal = j
	}
	return s.journal, nil
}

// editor returns a document editor over the local file system. Edits are
// recorded when the journal is enabled; a journal that cannot be opened
// downgrades to unrecorded edits with a warning.
func (s *session) editor(ctx context.Context) *docstore.Editor {
	opts := []docstore.Option{docstore.WithLogger(log.WithComponent("docstore"))}
	if s.cfg.Journal {
		j, err := s.openJournal(ctx)
		if err != nil {
			s.printer.Warn(fmt.Sprintf("edits will not be recorded: %v", err))
		} else {
			opts = append(opts, docstore.WithRecorder(j))
		}
	}
	return docstore.NewEditor(docstore.FileStore{}, opts...)
}
