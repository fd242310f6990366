package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/srvxml/internal/catalog"
	"github.com/papapumpkin/srvxml/internal/docstore"
	"github.com/papapumpkin/srvxml/internal/journal"
	"github.com/papapumpkin/srvxml/internal/liberty"
	"github.com/papapumpkin/srvxml/internal/serverxml"
)

// MultipleSelected heads the detail pane when more than one feature is shown.
const MultipleSelected = "Multiple features selected."

// Printer writes command output. Results go to out, diagnostics to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	st     styles
}

// New creates a Printer. Styling is dropped when out is not a terminal.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut, st: newStyles(out)}
}

// Error prints a failure message to the error stream.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.errOut, "%s %s\n", p.st.danger.Render("error:"), msg)
}

// Warn prints a warning to the error stream.
func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.errOut, "%s %s\n", p.st.warn.Render(iconWarn), msg)
}

// Info prints a muted note to the error stream.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.errOut, p.st.muted.Render(msg))
}

// --- Catalog output ---

// FeatureTable prints one row per catalog feature: id and display name.
func (p *Printer) FeatureTable(features []catalog.Feature) {
	if len(features) == 0 {
		fmt.Fprintln(p.out, p.st.muted.Render("(no features)"))
		return
	}
	width := 0
	for _, f := range features {
		width = max(width, lipgloss.Width(f.ID))
	}
	idCol := p.st.id.Width(width + 2)
	for _, f := range features {
		fmt.Fprintf(p.out, "%s%s\n", idCol.Render(f.ID), p.st.text.Render(f.Name()))
	}
	fmt.Fprintln(p.out, p.st.muted.Render(fmt.Sprintf("%d feature(s)", len(features))))
}

// FeatureDetail prints the detail pane for a single feature.
func (p *Printer) FeatureDetail(f catalog.Feature, enables, enabledBy string) {
	fmt.Fprintf(p.out, "%s %s\n", p.st.heading.Render(f.Name()), p.st.muted.Render("("+f.ID+")"))
	fmt.Fprintln(p.out, f.Description)
	p.relation("Enables:", enables)
	p.relation("Enabled by:", enabledBy)
}

// SelectionDetail prints the detail pane for several features at once.
func (p *Printer) SelectionDetail(s catalog.Selection) {
	fmt.Fprintln(p.out, p.st.heading.Render(MultipleSelected))
	fmt.Fprintf(p.out, "%s %s\n", p.st.label.Render("Selected:"), strings.Join(s.IDs, ", "))
	p.relation("Enables:", s.DescribeEnables())
	p.relation("Enabled by:", s.DescribeEnabledBy())
}

// Transitive prints the full enables closure in both directions.
func (p *Printer) Transitive(enables, enabledBy []string) {
	p.relation("All enabled:", listOrNone(enables))
	p.relation("All enabling:", listOrNone(enabledBy))
}

func listOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}

func (p *Printer) relation(label, value string) {
	fmt.Fprintf(p.out, "%s %s\n", p.st.label.Render(label), value)
}

// --- Document output ---

// Declared prints the features declared in a document. Known features show
// their display name; ids missing from the catalog are flagged.
func (p *Printer) Declared(doc string, known []catalog.Feature, unknown []string, onError string) {
	fmt.Fprintln(p.out, p.st.heading.Render(doc))
	if onError != "" {
		fmt.Fprintf(p.out, "%s %s\n", p.st.label.Render("onError:"), onError)
	}
	if len(known) == 0 && len(unknown) == 0 {
		fmt.Fprintln(p.out, p.st.muted.Render("  (no features declared)"))
		return
	}
	width := 0
	for _, f := range known {
		width = max(width, lipgloss.Width(f.ID))
	}
	idCol := p.st.id.Width(width + 2)
	for _, f := range known {
		fmt.Fprintf(p.out, "  %s%s\n", idCol.Render(f.ID), p.st.text.Render(f.Name()))
	}
	for _, id := range unknown {
		fmt.Fprintf(p.out, "  %s %s\n", p.st.warn.Render(iconWarn+" "+id), p.st.muted.Render("not in catalog"))
	}
}

// Result prints the outcome of one edit.
func (p *Printer) Result(r docstore.Result) {
	if !r.Changed {
		fmt.Fprintf(p.out, "%s %s\n", p.st.muted.Render(iconNoop), p.st.muted.Render(unchangedMessage(r.Op)))
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", p.st.success.Render(iconDone), changedMessage(r.Op))
}

func changedMessage(op serverxml.Op) string {
	switch op.Kind {
	case serverxml.KindAddFeature:
		return "added feature " + op.Arg
	case serverxml.KindRemoveFeature:
		return "removed feature " + op.Arg
	case serverxml.KindSetOnError:
		return "onError set to " + op.Arg
	case serverxml.KindSetSchema:
		return "schema location set to " + op.Arg
	}
	return op.String()
}

func unchangedMessage(op serverxml.Op) string {
	switch op.Kind {
	case serverxml.KindAddFeature:
		return "feature " + op.Arg + " already declared"
	case serverxml.KindSetOnError:
		return "onError already " + op.Arg
	case serverxml.KindSetSchema:
		return "schema location already set"
	}
	return op.String() + " (no change)"
}

// Changes prints feature ids added to and removed from a watched document.
func (p *Printer) Changes(doc string, added, removed []string) {
	if len(added) == 0 && len(removed) == 0 {
		fmt.Fprintf(p.out, "%s %s\n", p.st.muted.Render(iconNoop), p.st.muted.Render(doc+" changed, features unchanged"))
		return
	}
	fmt.Fprintln(p.out, p.st.heading.Render(doc))
	for _, id := range added {
		fmt.Fprintf(p.out, "  %s\n", p.st.success.Render(iconAdded+" "+id))
	}
	for _, id := range removed {
		fmt.Fprintf(p.out, "  %s\n", p.st.danger.Render(iconRemoved+" "+id))
	}
}

// Removed reports that a watched document disappeared.
func (p *Printer) Removed(doc string) {
	fmt.Fprintf(p.out, "%s %s\n", p.st.danger.Render(iconFailed), doc+" removed")
}

// --- Installation output ---

// Servers prints discovered server definitions.
func (p *Printer) Servers(servers []liberty.Server) {
	if len(servers) == 0 {
		fmt.Fprintln(p.out, p.st.muted.Render("(no servers found)"))
		return
	}
	width := 0
	for _, s := range servers {
		width = max(width, lipgloss.Width(s.Name))
	}
	nameCol := p.st.id.Width(width + 2)
	for _, s := range servers {
		fmt.Fprintf(p.out, "%s%s\n", nameCol.Render(s.Name), p.st.muted.Render(s.Path))
	}
}

// --- Journal output ---

// History prints journal entries, newest first.
func (p *Printer) History(entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, p.st.muted.Render("(no recorded edits)"))
		return
	}
	for _, e := range entries {
		mark := p.st.success.Render(iconDone)
		op := p.st.text.Render(e.Op.String())
		if e.Undone {
			mark = p.st.muted.Render(iconNoop)
			op = p.st.muted.Render(e.Op.String() + " (undone)")
		}
		fmt.Fprintf(p.out, "%s %s %s  %s\n",
			mark,
			p.st.muted.Render(e.At.Local().Format("2006-01-02 15:04:05")),
			p.st.id.Render(shortID(e.ID)),
			op)
	}
}

// Undone reports a reverted edit.
func (p *Printer) Undone(e journal.Entry) {
	fmt.Fprintf(p.out, "%s reverted %s %s\n", p.st.success.Render(iconDone), e.Op.String(), p.st.muted.Render("("+shortID(e.ID)+")"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
