package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/srvxml/internal/liberty"
)

var serversCmd = &cobra.Command{
	Use:   "servers [install-dir]",
	Short: "List server definitions under an installation",
	Long: `List every usr/servers/<name>/server.xml under the installation directory.
The directory defaults to install_dir, or the installation holding --server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServers,
}

func init() {
	rootCmd.AddCommand(serversCmd)
}

func runServers(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else if dir, err = s.cfg.ResolveInstallDir(); err != nil {
		return err
	}

	servers, err := liberty.Servers(dir)
	if err != nil {
		return err
	}
	s.printer.Servers(servers)
	return nil
}
