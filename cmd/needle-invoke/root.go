package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"
	// Commit is set at build time via ldflags.
	Commit = "unknown"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

type options struct {
	manifest string
	output   string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "needle-invoke",
		Short: "Compute invoker names and identities from a manifest",
		Long: TitleStyle.Render("needle-invoke") + SubtitleStyle.Render(" - invoker identities for needle containers") + `

A manifest lists indexed classes, the beans available for lookups and the
invokers to configure. needle-invoke configures each invoker the way a
container would and reports its canonical name and identity.

` + SubtitleStyle.Render("Examples:") + `
  needle-invoke list               Show names and identities
  needle-invoke check              Also resolve transformers and lookups
  needle-invoke lock               Pin identities in the lock file
  needle-invoke lock --verify      Fail when the lock file is stale
  needle-invoke graph --dot        Render beans and invokers as DOT
  needle-invoke classes            List classes, supertypes first`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.manifest, "manifest", "m", "needle-invoke.yaml", "manifest file (yaml, toml or json)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table or yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log invoker configuration")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newLockCmd(opts))
	root.AddCommand(newGraphCmd(opts))
	root.AddCommand(newClassesCmd(opts))
	return root
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Prefix: "needle-invoke",
		Level:  level,
	}))
}

func (o *options) load(cmd *cobra.Command) (*Manifest, *Report, error) {
	return o.loadReport(cmd, false)
}

func (o *options) loadReport(cmd *cobra.Command, generate bool) (*Manifest, *Report, error) {
	m, err := LoadManifest(o.manifest)
	if err != nil {
		return nil, nil, err
	}
	c, err := m.Container(newLogger(cmd.ErrOrStderr(), o.verbose))
	if err != nil {
		return nil, nil, err
	}
	return m, Describe(c, m, generate), nil
}

func (o *options) render(w io.Writer, r *Report) error {
	switch o.output {
	case outputTable:
		return r.WriteTable(w)
	case outputYAML:
		return r.WriteYAML(w)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show canonical names and identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, report, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), report)
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Generate every invoker, resolving transformers and lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, report, err := opts.loadReport(cmd, true)
			if err != nil {
				return err
			}
			if err := opts.render(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if n := report.Failures(); n > 0 {
				return fmt.Errorf("%d of %d invokers failed", n, len(report.Invokers))
			}
			return nil
		},
	}
}

func newLockCmd(opts *options) *cobra.Command {
	var (
		file   string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Write or verify the invoker lock file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, report, err := opts.loadReport(cmd, true)
			if err != nil {
				return err
			}
			lock, err := NewLockFile(report)
			if err != nil {
				_ = report.WriteTable(cmd.ErrOrStderr())
				return err
			}

			path := file
			if path == "" {
				path = m.Lock
			}

			if !verify {
				if err := lock.Write(path); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("locked %d invokers in %s", len(lock.Invokers), path)))
				return err
			}

			pinned, err := ReadLockFile(path)
			if err != nil {
				return err
			}
			diff := pinned.Diff(lock)
			if len(diff) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(path+" is up to date"))
				return err
			}
			for _, line := range diff {
				fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render(line))
			}
			return fmt.Errorf("%s is stale: %d invokers changed", path, len(diff))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "lock file path (default from the manifest)")
	cmd.Flags().BoolVar(&verify, "verify", false, "compare with the lock file instead of writing it")
	return cmd
}

func newGraphCmd(opts *options) *cobra.Command {
	var dot bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show beans and generated invokers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := LoadManifest(opts.manifest)
			if err != nil {
				return err
			}
			c, err := m.Container(newLogger(cmd.ErrOrStderr(), opts.verbose))
			if err != nil {
				return err
			}
			report := Describe(c, m, true)
			if n := report.Failures(); n > 0 {
				_ = report.WriteTable(cmd.ErrOrStderr())
			}

			if dot {
				c.FprintGraphDOT(cmd.OutOrStdout())
			} else {
				c.FprintGraph(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "render as Graphviz DOT")
	return cmd
}

// ClassEntry is one indexed class with its direct supertypes.
type ClassEntry struct {
	Name       string   `yaml:"name"`
	Supertypes []string `yaml:"supertypes,omitempty"`
}

// Classes lists the manifest's index, builtins included, with every class
// after its supertypes.
func Classes(m *Manifest) ([]ClassEntry, error) {
	index, err := m.Index()
	if err != nil {
		return nil, err
	}
	order, err := index.Hierarchy()
	if err != nil {
		return nil, err
	}

	entries := make([]ClassEntry, 0, len(order))
	for _, name := range order {
		class, _ := index.Class(name)
		entry := ClassEntry{Name: name}
		if class.Super != "" && name != class.Super {
			entry.Supertypes = append(entry.Supertypes, class.Super)
		}
		entry.Supertypes = append(entry.Supertypes, class.Interfaces...)
		entries = append(entries, entry)
	}
	return entries, nil
}

func newClassesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List indexed classes, supertypes first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := LoadManifest(opts.manifest)
			if err != nil {
				return err
			}
			entries, err := Classes(m)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch opts.output {
			case outputYAML:
				return yaml.NewEncoder(w).Encode(entries)
			case outputTable:
				for _, e := range entries {
					line := NameStyle.Render(e.Name)
					if len(e.Supertypes) > 0 {
						line += SubtitleStyle.Render(" : " + strings.Join(e.Supertypes, ", "))
					}
					if _, err := fmt.Fprintln(w, line); err != nil {
						return err
					}
				}
				return nil
			default:
				return fmt.Errorf("unknown output format %q", opts.output)
			}
		},
	}
}
