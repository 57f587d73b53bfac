package trace

import (
	"bytes"
	"fmt"

	"github.com/phasor-fsm/phasor/config"
)

// DOT renders a program's phase cycle as Graphviz source. current, when
// non-empty, highlights the active phase.
func DOT(p *config.Program, current string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("digraph %q {\n", p.ID))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, fontsize=10, style=rounded];\n")
	buf.WriteString("  edge [fontsize=9];\n")

	for _, ph := range p.Phases {
		style := ""
		if ph.Name == current {
			style = ` style="rounded,filled" fillcolor=lightgreen`
		}
		buf.WriteString(fmt.Sprintf("  %q [label=%q%s];\n", ph.Name, ph.Name, style))
	}

	n := len(p.Phases)
	for i, ph := range p.Phases {
		next := p.Phases[(i+1)%n]
		buf.WriteString(fmt.Sprintf("  %q -> %q [label=\"%dms\"];\n",
			ph.Name, next.Name, ph.DurationMS))
	}

	if p.Pulse != nil {
		buf.WriteString(fmt.Sprintf(
			"  pulse [label=\"pulse %dms/%dms\" shape=ellipse];\n",
			p.Pulse.WidthMS, p.Pulse.IntervalMS))
		buf.WriteString(fmt.Sprintf("  %q -> pulse [style=dotted];\n", p.Pulse.Phase))
	}

	buf.WriteString("}\n")
	return buf.String()
}
