package cmd

import (
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/srvxml/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the feature catalog (list, show, export)",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every feature in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show a feature's description and enables relationships",
	Long: `Show one feature's description and the features it enables or is enabled by.
With several ids the enables and enabled-by sets of all of them are merged.
--transitive adds everything reachable through chains of enables.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogShow,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as TOML, YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runCatalogExport,
}

func init() {
	catalogShowCmd.Flags().BoolP("transitive", "t", false, "also show transitive enables relationships")
	catalogExportCmd.Flags().StringP("format", "f", "toml", "output format: toml, yaml or json")
	catalogExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogList(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	c, err := s.loadCatalog()
	if err != nil {
		return err
	}
	s.printer.FeatureTable(c.Features())
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	c, err := s.loadCatalog()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		f, ok := c.Lookup(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", catalog.ErrFeatureNotFound, args[0])
		}
		enables, err := c.DescribeEnables(f.ID)
		if err != nil {
			return err
		}
		enabledBy, err := c.DescribeEnabledBy(f.ID)
		if err != nil {
			return err
		}
		s.printer.FeatureDetail(f, enables, enabledBy)
		if transitive, _ := cmd.Flags().GetBool("transitive"); transitive {
			all, err := c.Closure(f.ID)
			if err != nil {
				return err
			}
			allBy, err := c.ClosureBy(f.ID)
			if err != nil {
				return err
			}
			s.printer.Transitive(all, allBy)
		}
		return nil
	}

	sel, err := c.Aggregate(args)
	if err != nil {
		return err
	}
	s.printer.SelectionDetail(sel)
	return nil
}

func runCatalogExport(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	c, err := s.loadCatalog()
	if err != nil {
		return err
	}
	data, err := catalog.Encode(c.Source(), catalog.Format(format))
	if err != nil {
		return err
	}
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := renameio.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	s.printer.Info(fmt.Sprintf("wrote %d feature(s) to %s", c.Len(), output))
	return nil
}
