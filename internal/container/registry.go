package container

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/danpasecinic/needle-invoke/internal/scope"
	"github.com/danpasecinic/needle-invoke/types"
)

const (
	QualifierDefault = "Default"
	QualifierAny     = "Any"
	namedPrefix      = "Named("
)

type ProviderFunc func(ctx context.Context) (any, error)

type DestroyFunc func(instance any) error

type Bean struct {
	ID         string
	Type       types.Type
	Qualifiers []string
	Scope      scope.Scope
	Primary    bool
	Provider   ProviderFunc
	Destroy    DestroyFunc

	beanTypes []string

	mu           sync.Mutex
	instance     any
	instantiated bool
}

func (b *Bean) BeanTypes() []string {
	return slices.Clone(b.beanTypes)
}

// Instantiated reports whether a singleton instance exists.
func (b *Bean) Instantiated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.instantiated
}

func (b *Bean) String() string {
	return fmt.Sprintf(
		"bean %s [type=%s, scope=%s, qualifiers=%s, primary=%t]",
		b.ID, b.Type, b.Scope, strings.Join(b.Qualifiers, ","), b.Primary,
	)
}

func (b *Bean) hasType(name string) bool {
	return slices.Contains(b.beanTypes, name)
}

func (b *Bean) hasQualifiers(required []string) bool {
	for _, q := range required {
		if !slices.Contains(b.Qualifiers, q) {
			return false
		}
	}
	return true
}

// Named returns the qualifier selecting beans registered under name.
func Named(name string) string {
	return namedPrefix + name + ")"
}

func normalizeQualifiers(qualifiers []string) []string {
	out := slices.Clone(qualifiers)
	explicit := false
	for _, q := range out {
		if q != QualifierAny && !strings.HasPrefix(q, namedPrefix) {
			explicit = true
			break
		}
	}
	if !explicit && !slices.Contains(out, QualifierDefault) {
		out = append(out, QualifierDefault)
	}
	if !slices.Contains(out, QualifierAny) {
		out = append(out, QualifierAny)
	}
	return out
}

func requiredQualifiers(qualifiers []string) []string {
	if len(qualifiers) == 0 {
		return []string{QualifierDefault}
	}
	return qualifiers
}

type Registry struct {
	mu    sync.RWMutex
	beans map[string]*Bean
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		beans: make(map[string]*Bean),
	}
}

func (r *Registry) Register(b *Bean) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.beans[b.ID] = b
	r.order = append(r.order, b.ID)
}

func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.beans[id]
	return exists
}

func (r *Registry) Get(id string) (*Bean, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.beans[id]
	return b, exists
}

// All returns the registered beans in registration order.
func (r *Registry) All() []*Bean {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Bean, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.beans[id])
	}
	return out
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.beans)
}
