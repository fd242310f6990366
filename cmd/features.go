package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/srvxml/internal/catalog"
	"github.com/papapumpkin/srvxml/internal/docstore"
	"github.com/papapumpkin/srvxml/internal/serverxml"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the features declared in server.xml",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add <id>...",
	Short: "Declare features in server.xml",
	Long: `Declare each feature in the featureManager element of server.xml.
Ids are checked against the catalog unless --force is given. Features that are
already declared are left as they are.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>...",
	Aliases: []string{"rm"},
	Short:   "Remove feature declarations from server.xml",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

func init() {
	addCmd.Flags().Bool("force", false, "add ids that are not in the catalog")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	data, err := docstore.FileStore{}.Read(cmd.Context(), s.cfg.Server)
	if err != nil {
		return err
	}
	declared, err := serverxml.Features(data)
	if err != nil {
		return err
	}
	onError, err := serverxml.OnError(data)
	if err != nil && !errors.Is(err, serverxml.ErrMissingElement) {
		return err
	}

	var (
		known   []catalog.Feature
		unknown []string
	)
	if c, err := s.loadCatalog(); err != nil {
		s.printer.Warn(fmt.Sprintf("catalog unavailable, showing ids only: %v", err))
		for _, id := range declared {
			known = append(known, catalog.Feature{ID: id})
		}
	} else {
		known, unknown = c.Resolve(declared)
	}
	s.printer.Declared(s.cfg.Server, known, unknown, onError)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if force, _ := cmd.Flags().GetBool("force"); !force {
		c, err := s.loadCatalog()
		if err != nil {
			return fmt.Errorf("%w (use --force to skip the catalog check)", err)
		}
		for _, id := range args {
			if !c.Has(id) {
				return fmt.Errorf("%w: %s (use --force to add it anyway)", catalog.ErrFeatureNotFound, id)
			}
		}
	}

	return applyOps(cmd, s, opsFor(serverxml.KindAddFeature, args))
}

func runRemove(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	return applyOps(cmd, s, opsFor(serverxml.KindRemoveFeature, args))
}

func opsFor(kind serverxml.Kind, args []string) []serverxml.Op {
	ops := make([]serverxml.Op, 0, len(args))
	for _, a := range args {
		ops = append(ops, serverxml.Op{Kind: kind, Arg: a})
	}
	return ops
}

// applyOps runs ops against the configured server document and prints each
// result. Results already written are reported before the first error.
func applyOps(cmd *cobra.Command, s *session, ops []serverxml.Op) error {
	ctx := cmd.Context()
	results, err := s.editor(ctx).ApplyAll(ctx, s.cfg.Server, ops)
	for _, r := range results {
		s.printer.Result(r)
	}
	return err
}
