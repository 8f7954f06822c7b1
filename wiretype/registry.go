package wiretype

import (
	"sort"
	"sync"
)

// Registry is a process-wide catalog of named type descriptors. It
// is append-only: identifiers register at most once and live for the
// process lifetime, so a registry fully populated at startup is
// effectively read-only and freely shared across goroutines.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Descriptor)}
}

// Register adds a descriptor under the given identifier. The
// descriptor is structurally checked first; a second registration of
// the same identifier fails with *DuplicateTypeError and leaves the
// first descriptor in place.
//
// References inside the descriptor are not required to resolve yet;
// they may target types registered later (or the descriptor itself,
// for recursive types). Use ResolveRefs to confirm closure.
func (r *Registry) Register(name string, desc *Descriptor) error {
	if err := desc.Check(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[name]; ok {
		return &DuplicateTypeError{Name: name}
	}
	r.types[name] = desc
	return nil
}

// RegisterAll registers a batch of descriptors and then confirms
// that every reference in the batch resolves, in any registration
// order (intra-batch and mutually recursive references included).
// On any failure nothing from the batch is registered.
func (r *Registry) RegisterAll(types map[string]*Descriptor) error {
	for _, desc := range types {
		if err := desc.Check(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name := range types {
		if _, ok := r.types[name]; ok {
			return &DuplicateTypeError{Name: name}
		}
	}

	// Resolve against the union of existing and new entries before
	// mutating, so a broken reference leaves the registry untouched.
	lookup := func(name string) *Descriptor {
		if d, ok := r.types[name]; ok {
			return d
		}
		return types[name]
	}
	for _, desc := range types {
		if err := resolveRefs(desc, lookup, make(map[*Descriptor]bool)); err != nil {
			return err
		}
	}

	for name, desc := range types {
		r.types[name] = desc
	}
	return nil
}

// Resolve returns the descriptor registered under the identifier, or
// *UnknownTypeError.
func (r *Registry) Resolve(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.types[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return desc, nil
}

// Names returns a sorted snapshot of all registered identifiers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveRefs walks a descriptor graph and confirms every Ref
// resolves to a registered descriptor, transitively. Call it before
// first codec use of a descriptor to fail fast instead of
// mid-stream. Recursive graphs are fine; each descriptor is visited
// once.
func (r *Registry) ResolveRefs(desc *Descriptor) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lookup := func(name string) *Descriptor {
		return r.types[name]
	}
	return resolveRefs(desc, lookup, make(map[*Descriptor]bool))
}

func resolveRefs(d *Descriptor, lookup func(string) *Descriptor, seen map[*Descriptor]bool) error {
	if d == nil || seen[d] {
		return nil
	}
	seen[d] = true

	switch d.kind {
	case KindOptional, KindList:
		return resolveRefs(d.elem, lookup, seen)
	case KindMap:
		if err := resolveRefs(d.key, lookup, seen); err != nil {
			return err
		}
		return resolveRefs(d.val, lookup, seen)
	case KindStruct:
		for _, f := range d.fields {
			if err := resolveRefs(f.Type, lookup, seen); err != nil {
				return err
			}
		}
	case KindUnion:
		for _, v := range d.variants {
			if err := resolveRefs(v.Type, lookup, seen); err != nil {
				return err
			}
		}
	case KindRef:
		target := lookup(d.refName)
		if target == nil {
			return &UnknownTypeError{Name: d.refName}
		}
		return resolveRefs(target, lookup, seen)
	}
	return nil
}

// resolve follows Ref descriptors to their registered target. The
// registry may be nil when the descriptor graph is known to be
// ref-free (Check-time default validation relies on this).
func resolve(d *Descriptor, reg *Registry) (*Descriptor, error) {
	var seen map[*Descriptor]bool
	for d != nil && d.kind == KindRef {
		if reg == nil {
			return nil, &UnknownTypeError{Name: d.refName}
		}
		if seen[d] {
			// Ref chain cycle (A registered as a bare ref to B and
			// vice versa) never reaches a concrete kind.
			return nil, &UnknownTypeError{Name: d.refName}
		}
		if seen == nil {
			seen = make(map[*Descriptor]bool)
		}
		seen[d] = true
		target, err := reg.Resolve(d.refName)
		if err != nil {
			return nil, err
		}
		d = target
	}
	return d, nil
}
