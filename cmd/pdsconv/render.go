package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/migrate"
	"github.com/wippyai/pdscore/transcoder"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	groupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	spareStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	fillStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0E68C"))

	insertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	deleteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// printer writes CLI output, styled only when w is a terminal.
type printer struct {
	w     io.Writer
	width int // 0 = no truncation
	color bool
}

func newPrinter(f *os.File) *printer {
	p := &printer{w: f}
	fd := f.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		p.color = true
		if w, _, err := term.GetSize(int(fd)); err == nil {
			p.width = w
		}
	}
	return p
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) line(s lipgloss.Style, text string) {
	if p.width > 0 && ansi.StringWidth(text) > p.width {
		text = ansi.Truncate(text, p.width, "…")
	}
	fmt.Fprintln(p.w, p.style(s, text))
}

func (p *printer) title(text string) {
	fmt.Fprintln(p.w, p.style(titleStyle, text))
}

// tree prints the decomposition tree of an object, plain and compressed.
func (p *printer) tree(name string, plain, compressed *transcoder.Node) {
	p.title(fmt.Sprintf("%s: %d -> %d bytes", name, plain.SrcBytes(), plain.DstBytes()))
	p.nodes(compressed, 0)
	fmt.Fprintf(p.w, "\n%d nodes, %d after compression\n", plain.NodeCount(), compressed.NodeCount())
}

func (p *printer) nodes(n *transcoder.Node, depth int) {
	var s lipgloss.Style
	switch n.Role {
	case transcoder.RoleValue:
		s = valueStyle
	case transcoder.RoleSpare:
		s = spareStyle
	case transcoder.RoleFill:
		s = fillStyle
	default:
		s = groupStyle
	}
	p.line(s, strings.Repeat("  ", depth)+n.Summary())
	for _, c := range n.Children {
		p.nodes(c, depth+1)
	}
}

func (p *printer) label(dump string) {
	fmt.Fprint(p.w, dump)
}

func (p *printer) issues(issues []errors.Issue) {
	if len(issues) == 0 {
		return
	}
	p.title(fmt.Sprintf("%d conversion issue(s)", len(issues)))
	for _, is := range issues {
		p.line(deleteStyle, "  "+is.String())
	}
}

func (p *printer) report(rep *migrate.Report) {
	p.title(fmt.Sprintf("label generation: %s, %d change(s)", rep.Generation, len(rep.Changes)))
	for _, c := range rep.Changes {
		fmt.Fprintln(p.w, "  "+c.String())
	}
}

// diff prints a line diff of two label renderings.
func (p *printer) diff(before, after string) {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		prefix, s := "  ", spareStyle
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix, s = "+ ", insertStyle
		case diffpatch.DiffDelete:
			prefix, s = "- ", deleteStyle
		}
		for _, l := range strings.SplitAfter(strings.TrimSuffix(d.Text, "\n"), "\n") {
			p.line(s, prefix+strings.TrimSuffix(l, "\n"))
		}
	}
}
