package sfg

import (
	"fmt"
	"sort"
	"strings"
)

// DotOptions configures DumpDot (spec.md §6: "dump_dot(rankdir?,
// embed_states_threshold)").
type DotOptions struct {
	// RankDir is GraphViz's rankdir attribute ("LR", "TB", ...). Empty means
	// GraphViz's own default.
	RankDir string
	// EmbedStatesThreshold: a node's output states are drawn as part of its
	// own label when it writes fewer than this many states; otherwise state
	// names annotate the outgoing edges instead.
	EmbedStatesThreshold int
}

// DumpDot renders the graph as GraphViz text (spec.md §6), the only
// diagnostic surface owned by the core. Flow edges and dependency edges are
// rendered with distinct styles (solid vs. dashed).
func (g *Graph) DumpDot(opts DotOptions) string {
	var b strings.Builder
	b.WriteString("digraph sfg {\n")
	if opts.RankDir != "" {
		fmt.Fprintf(&b, "  rankdir=%s;\n", opts.RankDir)
	}

	for _, n := range g.nodes {
		label := nodeLabel(n, opts.EmbedStatesThreshold)
		fmt.Fprintf(&b, "  n%d [label=%q];\n", n.NodeID, label)
	}

	for _, n := range g.nodes {
		for _, s := range n.OutEdges.States() {
			n.OutEdges.Get(s).Each(func(succ *Node) {
				color := edgeColor(succ, s)
				style := "solid"
				if color == EdgeDependency {
					style = "dashed"
				}
				edgeLabel := ""
				if n.Meta != nil && len(n.Meta.OutputStates) >= opts.EmbedStatesThreshold {
					edgeLabel = fmt.Sprintf(" [label=%q,style=%s]", s.String(), style)
				} else {
					edgeLabel = fmt.Sprintf(" [style=%s]", style)
				}
				fmt.Fprintf(&b, "  n%d -> n%d%s;\n", n.NodeID, succ.NodeID, edgeLabel)
			})
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func nodeLabel(n *Node, embedThreshold int) string {
	if n.IsInitialNode {
		return "<initial>"
	}
	name := "?"
	if n.Meta != nil {
		name = n.Meta.Name
	}
	if n.Meta == nil || len(n.Meta.OutputStates) >= embedThreshold {
		return name
	}
	states := n.Meta.OutputStates.Slice()
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}
	sort.Strings(names)
	return fmt.Sprintf("%s\\n%s", name, strings.Join(names, ","))
}
