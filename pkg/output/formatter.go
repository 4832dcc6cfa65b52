// Package output prints layout reports for the headless layout command.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ritzau/mindmap-layout/pkg/session"
)

// depthColors cycles by node depth.
var depthColors = []*color.Color{
	color.New(color.FgCyan, color.Bold),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgMagenta),
	color.New(color.FgBlue),
}

func depthColor(depth int) *color.Color {
	return depthColors[depth%len(depthColors)]
}

// PrintLayoutReport prints every node in outline order with its position
// and radius, followed by the viewport and simulation state.
func PrintLayoutReport(w io.Writer, snap session.Snapshot) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	// Header
	bold.Fprintln(w, "Mind Map Layout")
	bold.Fprintln(w, "===============")
	fmt.Fprintf(w, "Nodes: %d  Links: %d\n", len(snap.Nodes), len(snap.Links))
	fmt.Fprintln(w)

	children := make(map[int64][]session.NodeView)
	var roots []session.NodeView
	for _, n := range snap.Nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
		} else {
			children[*n.ParentID] = append(children[*n.ParentID], n)
		}
	}

	var walk func(n session.NodeView)
	walk = func(n session.NodeView) {
		indent := strings.Repeat("  ", n.Depth)
		depthColor(n.Depth).Fprintf(w, "%s%s", indent, label(n))
		faint.Fprintf(w, "  #%d", n.ID)
		fmt.Fprintf(w, "  (%.1f, %.1f) r=%.0f", n.X, n.Y, n.Radius)
		if n.Pinned {
			yellow.Fprint(w, " pinned")
		}
		fmt.Fprintln(w)
		if n.Content != "" {
			faint.Fprintf(w, "%s  %s\n", indent, n.Content)
		}
		for _, c := range children[n.ID] {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	fmt.Fprintln(w)

	v := snap.Viewport
	fmt.Fprintf(w, "Viewport: translate(%.1f, %.1f) scale(%.3f) in %.0fx%.0f\n", v.X, v.Y, v.K, snap.Width, snap.Height)

	green.Fprintf(w, "Alpha: %.4f after %d ticks\n", snap.Alpha, snap.Ticks)
}

func label(n session.NodeView) string {
	if n.Label != "" {
		return n.Label + " " + n.Text
	}
	return n.Text
}
