package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/srvxml/internal/serverxml"
)

var onErrorCmd = &cobra.Command{
	Use:       "onerror <FAIL|WARN|IGNORE>",
	Short:     "Set the onError attribute of httpEndpoint",
	Args:      cobra.ExactArgs(1),
	ValidArgs: serverxml.OnErrorValues,
	RunE:      runOnError,
}

var schemaCmd = &cobra.Command{
	Use:   "schema <xsd-path>",
	Short: "Point server.xml at a schema file for editor completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(onErrorCmd)
	rootCmd.AddCommand(schemaCmd)
}

// parseOnError normalizes an onError value and checks it against the
// values the server accepts.
func parseOnError(v string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(v))
	if !slices.Contains(serverxml.OnErrorValues, upper) {
		return "", fmt.Errorf("invalid onError value %q (want one of %s)", v, strings.Join(serverxml.OnErrorValues, ", "))
	}
	return upper, nil
}

func runOnError(cmd *cobra.Command, args []string) error {
	value, err := parseOnError(args[0])
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	return applyOps(cmd, s, []serverxml.Op{{Kind: serverxml.KindSetOnError, Arg: value}})
}

func runSchema(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	return applyOps(cmd, s, []serverxml.Op{{Kind: serverxml.KindSetSchema, Arg: args[0]}})
}
