// Package render converts dependency graphs to Graphviz DOT and rasterized
// image formats for export.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes license, downloads, and risk score in node labels.
	// When false, only name@version is shown.
	Detailed bool
}

// fillFor maps a risk level to a node fill color. Unanalyzed nodes stay white.
func fillFor(level tree.RiskLevel) string {
	switch level {
	case tree.LevelLow:
		return "#d3f9d8"
	case tree.LevelMedium:
		return "#fff3bf"
	case tree.LevelHigh:
		return "#ffd8a8"
	case tree.LevelCritical:
		return "#ffc9c9"
	default:
		return "white"
	}
}

// ToDOT converts a dependency graph to Graphviz DOT format. The resulting
// DOT string can be rendered with [RenderSVG] or [RenderPNG].
//
// Circular and truncated placeholder nodes are drawn with dashed outlines to
// distinguish them from fully expanded packages.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if e.Type == graph.EdgeDirect {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	parts := []string{n.ID}
	if n.License != "" {
		parts = append(parts, "license: "+n.License)
	}
	if n.Downloads >= 0 {
		parts = append(parts, fmt.Sprintf("downloads: %d", n.Downloads))
	}
	if n.RiskLevel != "" {
		parts = append(parts, fmt.Sprintf("risk: %d (%s)", n.RiskScore, n.RiskLevel))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fillFor(n.RiskLevel)))
	if n.Circular || n.Truncated || n.Error != "" {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the <svg> tag so the viewBox starts at the
// origin with explicit pixel dimensions, which keeps embedded SVGs from
// clipping in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
