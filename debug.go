package needle

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

type GraphInfo struct {
	Beans    []BeanInfo
	Invokers []InvokerSummary
}

type BeanInfo struct {
	ID           string
	Type         string
	Scope        string
	Qualifiers   []string
	Primary      bool
	Instantiated bool
}

type InvokerSummary struct {
	Name     string
	Method   string
	Identity string
	// Lookups lists the types obtained from the container, the target
	// instance first when it is looked up.
	Lookups []string
}

func (c *Container) Graph() GraphInfo {
	keys := c.internal.Keys()
	sort.Strings(keys)

	beans := make([]BeanInfo, 0, len(keys))
	for _, key := range keys {
		b, ok := c.internal.Get(key)
		if !ok {
			continue
		}
		beans = append(
			beans, BeanInfo{
				ID:           b.ID,
				Type:         b.Type.String(),
				Scope:        b.Scope.String(),
				Qualifiers:   b.Qualifiers,
				Primary:      b.Primary,
				Instantiated: b.Instantiated(),
			},
		)
	}

	names := c.cache.Names()
	invokers := make([]InvokerSummary, 0, len(names))
	for _, name := range names {
		gen, ok := c.cache.Get(name)
		if !ok {
			continue
		}
		invokers = append(invokers, summarize(gen))
	}

	return GraphInfo{Beans: beans, Invokers: invokers}
}

func summarize(gen *GeneratedInvoker) InvokerSummary {
	info := gen.Info()
	var lookups []string
	if info.InstanceLookup() {
		lookups = append(lookups, info.BeanClass.Type().String())
	}
	for i, lookup := range info.ArgumentLookups() {
		if lookup {
			lookups = append(lookups, info.Method.Params[i].String())
		}
	}
	return InvokerSummary{
		Name:     gen.Name(),
		Method:   info.String(),
		Identity: gen.Identity(),
		Lookups:  lookups,
	}
}

func (c *Container) PrintGraph() {
	c.FprintGraph(os.Stdout)
}

func (c *Container) FprintGraph(w io.Writer) {
	info := c.Graph()

	if len(info.Beans) == 0 && len(info.Invokers) == 0 {
		_, _ = fmt.Fprintln(w, "(empty container)")
		return
	}

	for _, b := range info.Beans {
		status := "○"
		if b.Instantiated {
			status = "●"
		}
		primary := ""
		if b.Primary {
			primary = " primary"
		}
		_, _ = fmt.Fprintf(w, "%s %s [%s%s] %s\n", status, b.ID, b.Scope, primary, strings.Join(b.Qualifiers, ","))
	}

	for _, inv := range info.Invokers {
		if len(inv.Lookups) == 0 {
			_, _ = fmt.Fprintf(w, "▸ %s\n", inv.Name)
		} else {
			_, _ = fmt.Fprintf(w, "▸ %s ← %s\n", inv.Name, strings.Join(inv.Lookups, ", "))
		}
	}
}

func (c *Container) SprintGraph() string {
	var sb strings.Builder
	c.FprintGraph(&sb)
	return sb.String()
}

func (c *Container) PrintGraphDOT() {
	c.FprintGraphDOT(os.Stdout)
}

func (c *Container) FprintGraphDOT(w io.Writer) {
	info := c.Graph()

	_, _ = fmt.Fprintln(w, "digraph invokers {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, b := range info.Beans {
		style := ""
		if b.Instantiated {
			style = ", style=filled, fillcolor=lightblue"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", b.Type, escapeLabel(b.Type), style)
	}
	for _, inv := range info.Invokers {
		_, _ = fmt.Fprintf(w, "  %q [label=%q, shape=ellipse];\n", inv.Name, inv.Method)
	}

	_, _ = fmt.Fprintln(w)

	for _, inv := range info.Invokers {
		for _, dep := range inv.Lookups {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", inv.Name, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (c *Container) SprintGraphDOT() string {
	var sb strings.Builder
	c.FprintGraphDOT(&sb)
	return sb.String()
}

func escapeLabel(s string) string {
	if idx := strings.LastIndex(s, "."); idx != -1 {
		s = s[idx+1:]
	}
	return s
}
