package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/papapumpkin/srvxml/internal/catalog"
	"github.com/papapumpkin/srvxml/internal/docstore"
	"github.com/papapumpkin/srvxml/internal/journal"
	"github.com/papapumpkin/srvxml/internal/liberty"
	"github.com/papapumpkin/srvxml/internal/serverxml"
)

// newTestPrinter returns a printer writing to buffers. Buffers are not
// terminals, so output carries no escape sequences.
func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func assertContains(t *testing.T, output string, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if !strings.Contains(output, s) {
			t.Errorf("expected output to contain %q, got:\n%s", s, output)
		}
	}
}

func TestFeatureTable(t *testing.T) {
	t.Parallel()
	p, out, _ := newTestPrinter()
	p.FeatureTable([]catalog.Feature{
		{ID: "jsp-2.3", DisplayName: "JavaServer Pages 2.3"},
		{ID: "servlet-3.1"},
	})
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	assertContains(t, lines[0], "jsp-2.3", "JavaServer Pages 2.3")
	// Features without a display name fall back to their id.
	if strings.Count(lines[1], "servlet-3.1") != 2 {
		t.Errorf("row without display name = %q", lines[1])
	}
	if lines[2] != "2 feature(s)" {
		t.Errorf("footer = %q", lines[2])
	}
	// Names are aligned in one column.
	if strings.Index(lines[0], "JavaServer") != strings.LastIndex(lines[1], "servlet-3.1") {
		t.Errorf("columns not aligned:\n%s", out.String())
	}
}

func TestFeatureDetail(t *testing.T) {
	t.Parallel()
	p, out, _ := newTestPrinter()
	p.FeatureDetail(
		catalog.Feature{ID: "jsp-2.3", DisplayName: "JSP", Description: "Server pages."},
		"[servlet-3.1]",
		catalog.NoEnabledBy,
	)
	assertContains(t, out.String(),
		"JSP (jsp-2.3)",
		"Server pages.",
		"Enables: [servlet-3.1]",
		"Enabled by: Not enabled by any other features.",
	)
}

func TestSelectionDetail(t *testing.T) {
	t.Parallel()
	p, out, _ := newTestPrinter()
	p.SelectionDetail(catalog.Selection{
		IDs:     []string{"X", "Y"},
		Enables: []string{"A", "B", "C"},
	})
	assertContains(t, out.String(),
		MultipleSelected,
		"Selected: X, Y",
		"Enables: [A, B, C]",
		"Enabled by: "+catalog.NoEnabledBy,
	)
}

func TestTransitive(t *testing.T) {
	t.Parallel()
	p, out, _ := newTestPrinter()
	p.Transitive([]string{"el-3.0", "servlet-3.1"}, nil)
	assertContains(t, out.String(), "All enabled: el-3.0, servlet-3.1", "All enabling: (none)")
}

func TestDeclared(t *testing.T) {
	t.Parallel()
	p, out, _ := newTestPrinter()
	p.Declared("server.xml", []catalog.Feature{{ID: "servlet-3.1", DisplayName: "Servlet"}}, []string{"bogus-1.0"}, "WARN")
	assertContains(t, out.String(), "server.xml", "onError: WARN", "servlet-3.1", "Servlet", "bogus-1.0", "not in catalog")

	p, out, _ = newTestPrinter()
	p.Declared("server.xml", nil, nil, "")
	assertContains(t, out.String(), "(no features declared)")
	if strings.Contains(out.String(), "onError") {
		t.Errorf("empty onError printed:\n%s", out.String())
	}
}

func TestResult(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		result docstore.Result
		want   string
	}{
		{"added", docstore.Result{Op: serverxml.Op{Kind: serverxml.KindAddFeature, Arg: "jsp-2.3"}, Changed: true}, "✓ added feature jsp-2.3"},
		{"already declared", docstore.Result{Op: serverxml.Op{Kind: serverxml.KindAddFeature, Arg: "jsp-2.3"}}, "· feature jsp-2.3 already declared"},
		{"removed", docstore.Result{Op: serverxml.Op{Kind: serverxml.KindRemoveFeature, Arg: "jsp-2.3"}, Changed: true}, "✓ removed feature jsp-2.3"},
		{"onError", docstore.Result{Op: serverxml.Op{Kind: serverxml.KindSetOnError, Arg: "FAIL"}, Changed: true}, "✓ onError set to FAIL"},
		{"onError unchanged", docstore.Result{Op: serverxml.Op{Kind: serverxml.KindSetOnError, Arg: "FAIL"}}, "· onError already FAIL"},
		{"schema unchanged", docstore.Result{Op: serverxml.Op{Kind: serverxml.KindSetSchema, Arg: "s.xsd"}}, "· schema location already set"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, out, _ := newTestPrinter()
			p.Result(tt.result)
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("Result() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChanges(t *testing.T) {
	t.Parallel()
	p, out, _ := newTestPrinter()
	p.Changes("server.xml", []string{"jsp-2.3"}, []string{"servlet-3.1"})
	assertContains(t, out.String(), "+ jsp-2.3", "- servlet-3.1")

	p, out, _ = newTestPrinter()
	p.Changes("server.xml", nil, nil)
	assertContains(t, out.String(), "features unchanged")
}

func TestServers(t *testing.T) {
	t.Parallel()
	p, out, _ := newTestPrinter()
	p.Servers([]liberty.Server{{Name: "web", Path: "/wlp/usr/servers/web/server.xml"}})
	assertContains(t, out.String(), "web", "/wlp/usr/servers/web/server.xml")

	p, out, _ = newTestPrinter()
	p.Servers(nil)
	assertContains(t, out.String(), "(no servers found)")
}

func TestHistoryAndUndone(t *testing.T) {
	t.Parallel()
	p, out, _ := newTestPrinter()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.History([]journal.Entry{
		{ID: "0123456789abcdef", Op: serverxml.Op{Kind: serverxml.KindAddFeature, Arg: "jsp-2.3"}, At: at},
		{ID: "fedcba9876543210", Op: serverxml.Op{Kind: serverxml.KindSetOnError, Arg: "WARN"}, At: at, Undone: true},
	})
	assertContains(t, out.String(), "01234567", "add jsp-2.3", "onError WARN (undone)")
	if strings.Contains(out.String(), "0123456789abcdef") {
		t.Errorf("history should shorten entry ids:\n%s", out.String())
	}

	p, out, _ = newTestPrinter()
	p.Undone(journal.Entry{ID: "abc", Op: serverxml.Op{Kind: serverxml.KindRemoveFeature, Arg: "jsp-2.3"}})
	assertContains(t, out.String(), "reverted remove jsp-2.3", "(abc)")
}

func TestDiagnosticsGoToErrOut(t *testing.T) {
	t.Parallel()
	p, out, errOut := newTestPrinter()
	p.Error("boom")
	p.Warn("careful")
	p.Info("fyi")
	if out.Len() != 0 {
		t.Errorf("diagnostics written to out: %q", out.String())
	}
	assertContains(t, errOut.String(), "error: boom", "careful", "fyi")
}
