// Package liberty knows the on-disk layout of a server installation:
//
//	<install>/features.xml
//	<install>/usr/servers/<name>/server.xml
package liberty

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// CatalogFile is the feature catalog written by the feature-list tool at
// the installation root.
const CatalogFile = "features.xml"

// ErrNotServerPath is returned when a path is too shallow to sit inside an
// installation's usr/servers directory.
var ErrNotServerPath = errors.New("path is not inside usr/servers/<name>")

// Server is a server definition found under an installation.
type Server struct {
	Name string // directory name under usr/servers
	Path string // absolute path to server.xml
}

// InstallDir returns the installation root for a server.xml path, four
// levels up: <install>/usr/servers/<name>/server.xml.
func InstallDir(serverXML string) (string, error) {
	abs, err := filepath.Abs(serverXML)
	if err != nil {
		return "", err
	}
	serverDir := filepath.Dir(abs)
	serversDir := filepath.Dir(serverDir)
	usrDir := filepath.Dir(serversDir)
	if filepath.Base(serversDir) != "servers" || filepath.Base(usrDir) != "usr" {
		return "", fmt.Errorf("%w: %s", ErrNotServerPath, serverXML)
	}
	return filepath.Dir(usrDir), nil
}

// CatalogPath returns the default catalog location for an installation.
func CatalogPath(installDir string) string {
	return filepath.Join(installDir, CatalogFile)
}

// Servers lists every usr/servers/*/server.xml under installDir, sorted by name.
func Servers(installDir string) ([]Server, error) {
	abs, err := filepath.Abs(installDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("install dir: %w", err)
	}
	matches, err := doublestar.Glob(os.DirFS(abs), "usr/servers/*/server.xml")
	if err != nil {
		return nil, fmt.Errorf("discovering servers: %w", err)
	}
	servers := make([]Server, 0, len(matches))
	for _, m := range matches {
		p := filepath.Join(abs, filepath.FromSlash(m))
		servers = append(servers, Server{
			Name: filepath.Base(filepath.Dir(p)),
			Path: p,
		})
	}
	sort.Slice(servers, func(i, k int) bool { return servers[i].Name < servers[k].Name })
	return servers, nil
}
