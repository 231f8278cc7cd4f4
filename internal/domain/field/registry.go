package field

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/pubsub"
)

// Registry errors
var (
	ErrNilField       = errors.New("field cannot be nil")
	ErrDuplicateName  = errors.New("duplicate field name")
	ErrDuplicateAlias = errors.New("duplicate field alias")
)

// Registry indexes fields by name, symbol and alias.
//
// Names and aliases are authoritative and unique across the whole registry.
// Symbols are best effort: several fields may share one, and the symbol index
// points at whichever of them was registered last.
//
// Every change publishes one numbered event before the write lock is
// released, so subscribers receive events in the order the changes happened.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Field
	bySymbol map[string]*Field
	byAlias  map[string]*Field
	order    []string
	events   *pubsub.Broker[*Field]
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*Field),
		bySymbol: make(map[string]*Field),
		byAlias:  make(map[string]*Field),
		events:   pubsub.NewBroker[*Field](),
	}
}

// Register adds f to all three indices, or to none of them on error.
func (r *Registry) Register(f *Field) error {
	if f == nil {
		return ErrNilField
	}

	r.mu.Lock()
	if err := r.checkLocked(f); err != nil {
		r.mu.Unlock()
		log.Debug(log.CatRegistry, "registration rejected", "field", f.name, "error", err)
		return err
	}

	r.byName[f.name] = f
	if prev, ok := r.bySymbol[f.symbol]; ok && prev != f {
		log.Debug(log.CatRegistry, "symbol reassigned", "symbol", f.symbol, "from", prev.name, "to", f.name)
	}
	r.bySymbol[f.symbol] = f
	for _, a := range f.aliases {
		r.byAlias[a] = f
	}
	r.order = append(r.order, f.name)
	r.events.Publish(pubsub.RegisteredEvent, f)
	r.mu.Unlock()
	return nil
}

func (r *Registry) checkLocked(f *Field) error {
	if _, ok := r.byName[f.name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, f.name)
	}
	if owner, ok := r.byAlias[f.name]; ok {
		return fmt.Errorf("%w: %q is an alias of %q", ErrDuplicateName, f.name, owner.name)
	}

	seen := make(map[string]struct{}, len(f.aliases))
	for _, a := range f.aliases {
		if a == f.name {
			return fmt.Errorf("%w: %q repeats the field name", ErrDuplicateAlias, a)
		}
		if _, dup := seen[a]; dup {
			return fmt.Errorf("%w: %q listed twice on %q", ErrDuplicateAlias, a, f.name)
		}
		seen[a] = struct{}{}
		if owner, ok := r.byAlias[a]; ok {
			return fmt.Errorf("%w: %q already belongs to %q", ErrDuplicateAlias, a, owner.name)
		}
		if _, ok := r.byName[a]; ok {
			return fmt.Errorf("%w: %q is a registered field name", ErrDuplicateAlias, a)
		}
	}
	return nil
}

// BulkRegister registers fields in order and stops at the first failure.
// Fields registered before the failure stay registered.
func (r *Registry) BulkRegister(fields []*Field) error {
	for i, f := range fields {
		if err := r.Register(f); err != nil {
			name := "<nil>"
			if f != nil {
				name = f.name
			}
			return fmt.Errorf("bulk register: field %d (%s): %w", i, name, err)
		}
	}
	return nil
}

// Get resolves identifier by name, then symbol, then alias.
func (r *Registry) Get(identifier string) (*Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(identifier)
}

func (r *Registry) getLocked(identifier string) (*Field, bool) {
	if f, ok := r.byName[identifier]; ok {
		return f, true
	}
	if f, ok := r.bySymbol[identifier]; ok {
		return f, true
	}
	if f, ok := r.byAlias[identifier]; ok {
		return f, true
	}
	return nil, false
}

// GetByName resolves identifier against canonical names only.
func (r *Registry) GetByName(name string) (*Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byName[name]
	return f, ok
}

// Has reports whether Get would find identifier.
func (r *Registry) Has(identifier string) bool {
	_, ok := r.Get(identifier)
	return ok
}

// Remove drops the named field from every index. The symbol entry is only
// dropped while it still points at this field; a field it shadowed is not
// restored. Returns false when no field has that name.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	f, ok := r.byName[name]
	if !ok {
		r.mu.Unlock()
		return false
	}

	delete(r.byName, name)
	if r.bySymbol[f.symbol] == f {
		delete(r.bySymbol, f.symbol)
	}
	for _, a := range f.aliases {
		if r.byAlias[a] == f {
			delete(r.byAlias, a)
		}
	}
	if i := slices.Index(r.order, name); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	r.events.Publish(pubsub.RemovedEvent, f)
	r.mu.Unlock()
	return true
}

// List returns fields in registration order. A non-empty category keeps only
// fields whose metadata["category"] equals it.
func (r *Registry) List(category string) []*Field {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Field, 0, len(r.order))
	for _, name := range r.order {
		f := r.byName[name]
		if category != "" && f.Category() != category {
			continue
		}
		result = append(result, f)
	}
	return result
}

// Categories returns the distinct metadata categories, sorted alphabetically
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[string]bool)
	for _, f := range r.byName {
		if c := f.Category(); c != "" {
			set[c] = true
		}
	}
	categories := make([]string, 0, len(set))
	for c := range set {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// Len returns the number of registered fields.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// NotifyReloaded publishes a ReloadedEvent with a nil payload, marking the
// end of a batch of registrations and removals.
func (r *Registry) NotifyReloaded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events.Publish(pubsub.ReloadedEvent, nil)
}

// Version returns the sequence number of the last published event. Events
// are published while the change they describe holds the write lock, so a
// reader that takes Version before reading fields sees every change whose
// event is numbered at or below it.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events.Seq()
}

// Subscribe streams registration, removal and reload events until ctx is
// done.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[*Field] {
	return r.events.Subscribe(ctx)
}

// Close ends all subscriptions.
func (r *Registry) Close() {
	r.events.Close()
}
