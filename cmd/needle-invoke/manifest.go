package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/danpasecinic/needle-invoke"
	"github.com/danpasecinic/needle-invoke/types"
)

const (
	// EnvPrefix prefixes environment overrides of top-level manifest keys.
	EnvPrefix = "NEEDLE_INVOKE"
	// DefaultLockFile is where the lock command writes unless told otherwise.
	DefaultLockFile = "needle-invoke.lock"
)

// errNotExecutable is returned by every method and provider of a manifest
// container: manifests describe shapes, never behavior.
var errNotExecutable = errors.New("manifest members are not executable")

// inertTransformer stands in for stateful transformer instances, which are
// created when an invoker is generated.
type inertTransformer struct{}

func (inertTransformer) Transform(any) (any, error) {
	return nil, errNotExecutable
}

var _ needle.Transformer = inertTransformer{}

// Manifest describes a class index, the beans available for lookups and
// the invokers to configure against them.
type Manifest struct {
	Name     string        `mapstructure:"name"`
	Lock     string        `mapstructure:"lock"`
	Classes  []ClassSpec   `mapstructure:"classes"`
	Beans    []BeanSpec    `mapstructure:"beans"`
	Invokers []InvokerSpec `mapstructure:"invokers"`
}

type ClassSpec struct {
	Name       string       `mapstructure:"name"`
	Super      string       `mapstructure:"super"`
	Interfaces []string     `mapstructure:"interfaces"`
	Interface  bool         `mapstructure:"interface"`
	Qualifiers []string     `mapstructure:"qualifiers"`
	Methods    []MethodSpec `mapstructure:"methods"`
	// Constructible marks classes usable as stateful transformer owners.
	Constructible bool `mapstructure:"constructible"`
}

type MethodSpec struct {
	Name            string     `mapstructure:"name"`
	Static          bool       `mapstructure:"static"`
	Params          []string   `mapstructure:"params"`
	ParamQualifiers [][]string `mapstructure:"param_qualifiers"`
	Returns         string     `mapstructure:"returns"`
}

type BeanSpec struct {
	Class      string   `mapstructure:"class"`
	ID         string   `mapstructure:"id"`
	Named      string   `mapstructure:"named"`
	Qualifiers []string `mapstructure:"qualifiers"`
	Scope      string   `mapstructure:"scope"`
	Primary    bool     `mapstructure:"primary"`
}

// MethodRef names a transformer or wrapper method.
type MethodRef struct {
	Class  string `mapstructure:"class"`
	Method string `mapstructure:"method"`
}

type ArgumentTransformerSpec struct {
	Position int    `mapstructure:"position"`
	Class    string `mapstructure:"class"`
	Method   string `mapstructure:"method"`
}

type InvokerSpec struct {
	Class                 string                    `mapstructure:"class"`
	Method                string                    `mapstructure:"method"`
	InstanceLookup        bool                      `mapstructure:"instance_lookup"`
	ArgumentLookups       []int                     `mapstructure:"argument_lookups"`
	InstanceTransformer   *MethodRef                `mapstructure:"instance_transformer"`
	ArgumentTransformers  []ArgumentTransformerSpec `mapstructure:"argument_transformers"`
	ReturnTransformer     *MethodRef                `mapstructure:"return_transformer"`
	ReturnTransformerType string                    `mapstructure:"return_transformer_type"`
	ExceptionTransformer  *MethodRef                `mapstructure:"exception_transformer"`
	Wrapper               *MethodRef                `mapstructure:"wrapper"`
}

func (s InvokerSpec) String() string {
	return s.Class + "#" + s.Method
}

// LoadManifest reads a YAML, TOML or JSON manifest, chosen by extension.
// Top-level scalar keys can be overridden from the environment, for example
// NEEDLE_INVOKE_LOCK.
func LoadManifest(path string) (*Manifest, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("manifest not found: %w", err)
	}

	v := viper.New()
	v.SetDefault("lock", DefaultLockFile)
	v.SetDefault("name", "")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	return &m, nil
}

// Index builds the class index the manifest describes.
func (m *Manifest) Index() (*types.Index, error) {
	index := types.NewIndex()

	classes := make([]*types.ClassInfo, 0, len(m.Classes))
	for _, spec := range m.Classes {
		class, err := spec.classInfo()
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	if err := index.Add(classes...); err != nil {
		return nil, err
	}
	if err := index.Verify(); err != nil {
		return nil, err
	}
	return index, nil
}

func (s ClassSpec) classInfo() (*types.ClassInfo, error) {
	class := &types.ClassInfo{
		Name:       s.Name,
		Super:      s.Super,
		Interfaces: s.Interfaces,
		Interface:  s.Interface,
		Qualifiers: s.Qualifiers,
	}
	if s.Constructible {
		class.New = func() (any, error) {
			return inertTransformer{}, nil
		}
	}

	for _, ms := range s.Methods {
		method := &types.MethodInfo{
			Name:            ms.Name,
			Static:          ms.Static,
			ParamQualifiers: ms.ParamQualifiers,
			Func: func(context.Context, any, []any) (any, error) {
				return nil, errNotExecutable
			},
		}
		for _, p := range ms.Params {
			t, err := ParseType(p)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", s.Name, ms.Name, err)
			}
			method.Params = append(method.Params, t)
		}
		ret, err := ParseType(ms.Returns)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Name, ms.Name, err)
		}
		method.Return = ret
		class.Methods = append(class.Methods, method)
	}
	return class, nil
}

// Container builds a container over the manifest's index with every bean
// registered. Bean providers always fail; lookups are only resolved, never
// instantiated.
func (m *Manifest) Container(logger *slog.Logger) (*needle.Container, error) {
	index, err := m.Index()
	if err != nil {
		return nil, err
	}

	c := needle.New(needle.WithIndex(index), needle.WithLogger(logger))
	for _, bean := range m.Beans {
		opts, err := bean.options()
		if err != nil {
			return nil, err
		}
		unavailable := func(context.Context) (any, error) {
			return nil, errNotExecutable
		}
		if err := needle.Provide[any](c, types.Class(bean.Class), unavailable, opts...); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (b BeanSpec) options() ([]needle.ProviderOption, error) {
	var opts []needle.ProviderOption
	if b.ID != "" {
		opts = append(opts, needle.WithID(b.ID))
	}
	if b.Named != "" {
		opts = append(opts, needle.WithName(b.Named))
	}
	if len(b.Qualifiers) > 0 {
		opts = append(opts, needle.WithQualifiers(b.Qualifiers...))
	}
	if b.Primary {
		opts = append(opts, needle.WithPrimary())
	}

	switch strings.ToLower(b.Scope) {
	case "", "singleton":
		opts = append(opts, needle.WithScope(needle.Singleton))
	case "dependent":
		opts = append(opts, needle.WithScope(needle.Dependent))
	case "request":
		opts = append(opts, needle.WithScope(needle.Request))
	default:
		return nil, fmt.Errorf("bean %s: unknown scope %q", b.Class, b.Scope)
	}
	return opts, nil
}

// Builder configures an invoker builder for spec. Misconfigurations
// surface from Info or Build, as with any builder.
func (s InvokerSpec) Builder(c *needle.Container) *needle.InvokerBuilder {
	b := c.CreateInvoker(s.Class, s.Method)
	if s.InstanceLookup {
		b.WithInstanceLookup()
	}
	for _, pos := range s.ArgumentLookups {
		b.WithArgumentLookup(pos)
	}
	if s.InstanceTransformer != nil {
		b.WithInstanceTransformer(s.InstanceTransformer.Class, s.InstanceTransformer.Method)
	}
	for _, at := range s.ArgumentTransformers {
		b.WithArgumentTransformer(at.Position, at.Class, at.Method)
	}
	if s.ReturnTransformer != nil {
		b.WithReturnValueTransformer(s.ReturnTransformer.Class, s.ReturnTransformer.Method)
	}
	if s.ReturnTransformerType != "" {
		b.WithReturnValueTransformerType(s.ReturnTransformerType)
	}
	if s.ExceptionTransformer != nil {
		b.WithExceptionTransformer(s.ExceptionTransformer.Class, s.ExceptionTransformer.Method)
	}
	if s.Wrapper != nil {
		b.WithInvocationWrapper(s.Wrapper.Class, s.Wrapper.Method)
	}
	return b
}
