package field

import "github.com/zjrosen/fieldunits/internal/pubsub"

// Provider defines read-only access to a field registry. Presentation and
// conversion code depend on it rather than on *Registry.
type Provider interface {
	// Get resolves an identifier by name, then symbol, then alias.
	Get(identifier string) (*Field, bool)

	// Has reports whether Get would succeed.
	Has(identifier string) bool

	// List returns fields in registration order, optionally filtered by
	// metadata category ("" for all).
	List(category string) []*Field

	// Categories returns the distinct categories, sorted alphabetically.
	Categories() []string

	// Len returns the number of registered fields.
	Len() int

	// Version returns the sequence number of the latest change event. An
	// event numbered at or below a Version taken before a read is already
	// reflected by that read.
	Version() uint64
}

// Compile-time checks that Registry implements Provider and publishes field events.
var (
	_ Provider                  = (*Registry)(nil)
	_ pubsub.Subscriber[*Field] = (*Registry)(nil)
)
