package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/danpasecinic/needle-invoke"
)

// Entry is the outcome of configuring one manifest invoker.
type Entry struct {
	Method   string `yaml:"method" toml:"method"`
	Name     string `yaml:"name,omitempty" toml:"name"`
	Identity string `yaml:"identity,omitempty" toml:"identity"`
	Wrapped  bool   `yaml:"wrapped" toml:"wrapped"`
	Lookups  bool   `yaml:"lookups" toml:"lookups"`
	Code     string `yaml:"code,omitempty" toml:"-"`
	Error    string `yaml:"error,omitempty" toml:"-"`
}

func (e Entry) Failed() bool {
	return e.Error != ""
}

type Report struct {
	Manifest string  `yaml:"manifest,omitempty"`
	Invokers []Entry `yaml:"invokers"`
}

func (r *Report) Failures() int {
	n := 0
	for _, e := range r.Invokers {
		if e.Failed() {
			n++
		}
	}
	return n
}

// Describe configures every invoker of m against c. With generate set each
// invoker is also generated, which resolves transformers and lookups;
// otherwise only the frozen configuration and its identity are computed.
func Describe(c *needle.Container, m *Manifest, generate bool) *Report {
	report := &Report{Manifest: m.Name}

	for _, spec := range m.Invokers {
		entry := Entry{Method: spec.String()}

		info, err := describe(spec.Builder(c), generate)
		if err != nil {
			entry.Code = needle.ErrorCodeOf(err).String()
			entry.Error = err.Error()
		} else {
			entry.Name = info.Name()
			entry.Identity = info.Identity()
			entry.Wrapped = info.WrapperClassName() != ""
			entry.Lookups = info.UsesLookup()
		}
		report.Invokers = append(report.Invokers, entry)
	}

	slices.SortStableFunc(report.Invokers, func(a, b Entry) int {
		return strings.Compare(a.Method, b.Method)
	})
	return report
}

func describe(b *needle.InvokerBuilder, generate bool) (*needle.InvokerInfo, error) {
	if !generate {
		return b.Info()
	}
	inv, err := b.Build()
	if err != nil {
		return nil, err
	}
	return inv.Info(), nil
}

// WriteYAML renders r as a YAML document.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// WriteTable renders r as an aligned, styled table.
func (r *Report) WriteTable(w io.Writer) error {
	if len(r.Invokers) == 0 {
		_, err := fmt.Fprintln(w, SubtitleStyle.Render("(no invokers)"))
		return err
	}

	header := []string{"METHOD", "INVOKER", "LOOKUPS"}
	rows := make([][]string, 0, len(r.Invokers))
	for _, e := range r.Invokers {
		if e.Failed() {
			rows = append(rows, []string{e.Method, ErrorStyle.Render(e.Code), ""})
			continue
		}
		lookups := ""
		if e.Lookups {
			lookups = SuccessStyle.Render("yes")
		}
		rows = append(rows, []string{e.Method, NameStyle.Render(e.Name), lookups})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	if r.Manifest != "" {
		b.WriteString(TitleStyle.Render(r.Manifest))
		b.WriteString("\n")
	}
	for i, h := range header {
		b.WriteString(headerStyle.Width(widths[i] + 2).Render(h))
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(cellStyle.Width(widths[i] + 2).Render(cell))
		}
		b.WriteString("\n")
	}

	for _, e := range r.Invokers {
		if e.Failed() {
			b.WriteString(WarningStyle.Render(e.Method + ": "))
			b.WriteString(e.Error)
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
