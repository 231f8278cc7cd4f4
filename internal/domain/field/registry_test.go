package field

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/fieldunits/internal/pubsub"
)

func mkField(t *testing.T, name, symbol, unit string, aliases ...string) *Field {
	t.Helper()
	f, err := NewBuilder(name).Symbol(symbol).Unit(unit).Aliases(aliases...).Build()
	require.NoError(t, err)
	return f
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	b := mkMagneticField(t)
	temp := mkField(t, "Temperature", "T", "kelvin", "temp")

	require.NoError(t, r.Register(b))
	require.NoError(t, r.Register(temp))

	for _, id := range []string{"MagneticField", "B", "B_field", "magnetic_field"} {
		got, ok := r.Get(id)
		require.True(t, ok, id)
		require.Same(t, b, got, id)
	}

	got, ok := r.Get("temp")
	require.True(t, ok)
	require.Same(t, temp, got)

	require.Equal(t, 2, r.Len())
	require.True(t, r.Has("T"))
	require.False(t, r.Has("unknown"))

	_, ok = r.Get("")
	require.False(t, ok)
}

func TestRegistry_GetByName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mkMagneticField(t)))

	_, ok := r.GetByName("MagneticField")
	require.True(t, ok)
	_, ok = r.GetByName("B")
	require.False(t, ok, "symbols are not names")
	_, ok = r.GetByName("B_field")
	require.False(t, ok, "aliases are not names")
}

func TestRegistry_NameBeatsSymbolBeatsAlias(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mkField(t, "x", "s1", "m")))
	require.NoError(t, r.Register(mkField(t, "second", "x", "m")))
	require.NoError(t, r.Register(mkField(t, "third", "y", "m", "z")))
	require.NoError(t, r.Register(mkField(t, "fourth", "z", "m")))

	got, _ := r.Get("x")
	require.Equal(t, "x", got.Name())

	got, _ = r.Get("z")
	require.Equal(t, "fourth", got.Name(), "symbol is checked before alias")
}

func TestRegistry_Register_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		field   func(t *testing.T) *Field
		wantErr error
	}{
		{
			name:    "duplicate name",
			field:   func(t *testing.T) *Field { return mkField(t, "MagneticField", "B2", "gauss") },
			wantErr: ErrDuplicateName,
		},
		{
			name:    "name equals existing alias",
			field:   func(t *testing.T) *Field { return mkField(t, "B_field", "Bf", "tesla") },
			wantErr: ErrDuplicateName,
		},
		{
			name:    "alias already owned",
			field:   func(t *testing.T) *Field { return mkField(t, "Other", "O", "tesla", "magnetic_field") },
			wantErr: ErrDuplicateAlias,
		},
		{
			name:    "alias equals existing name",
			field:   func(t *testing.T) *Field { return mkField(t, "Other", "O", "tesla", "MagneticField") },
			wantErr: ErrDuplicateAlias,
		},
		{
			name:    "alias equals own name",
			field:   func(t *testing.T) *Field { return mkField(t, "Other", "O", "tesla", "Other") },
			wantErr: ErrDuplicateAlias,
		},
		{
			name:    "alias listed twice",
			field:   func(t *testing.T) *Field { return mkField(t, "Other", "O", "tesla", "o", "o") },
			wantErr: ErrDuplicateAlias,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.NoError(t, r.Register(mkMagneticField(t)))

			err := r.Register(tt.field(t))
			require.ErrorIs(t, err, tt.wantErr)

			// Rejected registrations leave every index untouched.
			require.Equal(t, 1, r.Len())
			require.False(t, r.Has("Other"))
			require.False(t, r.Has("O"))
			require.False(t, r.Has("o"))
			got, ok := r.Get("B")
			require.True(t, ok)
			require.Equal(t, "MagneticField", got.Name())
			require.Len(t, r.List(""), 1)
		})
	}
}

func TestRegistry_Register_Nil(t *testing.T) {
	r := NewRegistry()
	require.ErrorIs(t, r.Register(nil), ErrNilField)
	require.Zero(t, r.Len())
}

func TestRegistry_SymbolLastWins(t *testing.T) {
	r := NewRegistry()
	stress := mkField(t, "Stress", "σ", "Pa")
	conductivity := mkField(t, "Conductivity", "σ", "S/m")

	require.NoError(t, r.Register(stress))
	require.NoError(t, r.Register(conductivity))

	got, ok := r.Get("σ")
	require.True(t, ok)
	require.Same(t, conductivity, got)

	got, ok = r.Get("Stress")
	require.True(t, ok)
	require.Same(t, stress, got, "shadowed field stays reachable by name")
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	b := mkMagneticField(t)
	require.NoError(t, r.Register(b))
	require.NoError(t, r.Register(mkField(t, "Temperature", "T", "K")))

	require.True(t, r.Remove("MagneticField"))
	require.False(t, r.Remove("MagneticField"))
	require.False(t, r.Remove("B"), "removal is by name only")

	for _, id := range []string{"MagneticField", "B", "B_field", "magnetic_field"} {
		require.False(t, r.Has(id), id)
	}
	require.Equal(t, 1, r.Len())

	// The freed name and aliases can be registered again.
	require.NoError(t, r.Register(mkMagneticField(t)))
	require.Equal(t, []string{"Temperature", "MagneticField"}, names(r.List("")))
}

func TestRegistry_Remove_KeepsNewerSymbolOwner(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(mkField(t, "Stress", "σ", "Pa")))
	require.NoError(t, r.Register(mkField(t, "Conductivity", "σ", "S/m")))

	require.True(t, r.Remove("Stress"))
	got, ok := r.Get("σ")
	require.True(t, ok)
	require.Equal(t, "Conductivity", got.Name())

	require.True(t, r.Remove("Conductivity"))
	require.False(t, r.Has("σ"))
}

func TestRegistry_ListAndCategories(t *testing.T) {
	r := NewRegistry()
	fields := []*Field{
		NewBuilder("Velocity").Unit("m/s").Category("hydraulics").MustBuild(),
		NewBuilder("MagneticField").Symbol("B").Unit("T").Category("electromagnetic").MustBuild(),
		NewBuilder("Pressure").Symbol("P").Unit("Pa").Category("hydraulics").MustBuild(),
		NewBuilder("Index").MustBuild(),
	}
	require.NoError(t, r.BulkRegister(fields))

	require.Equal(t, []string{"Velocity", "MagneticField", "Pressure", "Index"}, names(r.List("")))
	require.Equal(t, []string{"Velocity", "Pressure"}, names(r.List("hydraulics")))
	require.Empty(t, r.List("thermal"))
	require.Equal(t, []string{"electromagnetic", "hydraulics"}, r.Categories())
}

func TestRegistry_BulkRegister_StopsAtFirstFailure(t *testing.T) {
	r := NewRegistry()
	fields := []*Field{
		mkField(t, "A", "a", "m"),
		mkField(t, "B", "b", "m"),
		mkField(t, "A", "a2", "m"),
		mkField(t, "C", "c", "m"),
	}

	err := r.BulkRegister(fields)
	require.ErrorIs(t, err, ErrDuplicateName)
	require.Contains(t, err.Error(), "field 2 (A)")
	require.Equal(t, []string{"A", "B"}, names(r.List("")))
	require.False(t, r.Has("C"))
}

func TestRegistry_Events(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := r.Subscribe(ctx)

	b := mkMagneticField(t)
	require.NoError(t, r.Register(b))
	require.Error(t, r.Register(b))
	require.True(t, r.Remove(b.Name()))

	ev := receive(t, events)
	require.Equal(t, pubsub.RegisteredEvent, ev.Type)
	require.Same(t, b, ev.Payload)

	ev = receive(t, events)
	require.Equal(t, pubsub.RemovedEvent, ev.Type, "rejected registrations publish nothing")
	require.Same(t, b, ev.Payload)
}

func TestRegistry_NotifyReloaded(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := r.Subscribe(ctx)

	r.NotifyReloaded()
	ev := receive(t, events)
	require.Equal(t, pubsub.ReloadedEvent, ev.Type)
	require.Nil(t, ev.Payload)
}

func TestRegistry_Version(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := r.Subscribe(ctx)

	require.Zero(t, r.Version())
	require.NoError(t, r.Register(mkMagneticField(t)))
	require.Error(t, r.Register(mkMagneticField(t)))
	require.Equal(t, uint64(1), r.Version(), "rejected registrations do not advance the version")

	require.True(t, r.Remove("MagneticField"))
	r.NotifyReloaded()
	require.Equal(t, uint64(3), r.Version())

	for want := uint64(1); want <= 3; want++ {
		require.Equal(t, want, receive(t, events).Seq)
	}
}

func TestRegistry_EventOrderMatchesChanges(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := r.Subscribe(ctx)

	// writers race on one name; the buffer holds every event they can produce
	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				f := NewBuilder("X").Symbol("x").Unit("m").MustBuild()
				if r.Register(f) == nil {
					r.Remove("X")
				}
			}
		}()
	}
	wg.Wait()

	require.Len(t, events, int(r.Version()))
	present := false
	for len(events) > 0 {
		ev := <-events
		switch ev.Type {
		case pubsub.RegisteredEvent:
			require.False(t, present, "registered event %d while present", ev.Seq)
			present = true
		case pubsub.RemovedEvent:
			require.True(t, present, "removed event %d while absent", ev.Seq)
			present = false
		}
	}
	require.Equal(t, r.Has("X"), present)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				name := fmt.Sprintf("f%d_%d", i, j)
				f := NewBuilder(name).Symbol("s").Unit("m").Aliases(name + "_alias").MustBuild()
				assert.NoError(t, r.Register(f))
				_, ok := r.Get(name + "_alias")
				assert.True(t, ok)
				_ = r.List("")
				_ = r.Categories()
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 400, r.Len())
}

func TestRegistry_Properties(t *testing.T) {
	ident := rapid.StringMatching(`[a-z]{1,6}`)

	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		n := rapid.IntRange(1, 20).Draw(t, "n")

		var registered []*Field
		for i := 0; i < n; i++ {
			name := ident.Draw(t, "name")
			symbol := ident.Draw(t, "symbol")
			aliases := rapid.SliceOfN(ident, 0, 3).Draw(t, "aliases")

			f, err := NewBuilder(name).Symbol(symbol).Aliases(aliases...).Build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if r.Register(f) == nil {
				registered = append(registered, f)
			}
		}

		if r.Len() != len(registered) {
			t.Fatalf("len %d, registered %d", r.Len(), len(registered))
		}

		owners := make(map[string]string)
		for _, f := range registered {
			got, ok := r.Get(f.Name())
			if !ok || got != f {
				t.Fatalf("get(%q) did not return the registered field", f.Name())
			}
			for _, a := range f.Aliases() {
				if prev, dup := owners[a]; dup {
					t.Fatalf("alias %q owned by %q and %q", a, prev, f.Name())
				}
				owners[a] = f.Name()
				if _, clash := r.GetByName(a); clash {
					t.Fatalf("alias %q collides with a field name", a)
				}
			}
		}
	})
}

func TestField_ConvertRoundTripProperty(t *testing.T) {
	f := mkMagneticField(t)
	targets := []string{"gauss", "mT", "µT", "kG", "Wb/m**2"}

	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(-1e3, 1e3).Draw(t, "v")
		to := rapid.SampledFrom(targets).Draw(t, "to")

		out, err := f.Convert(v, to)
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		back, err := f.system.ConvertString(out, to, "tesla")
		if err != nil {
			t.Fatalf("convert back: %v", err)
		}
		if d := back - v; d > 1e-9 || d < -1e-9 {
			t.Fatalf("round trip %v -> %v %s -> %v", v, out, to, back)
		}
	})
}

func receive(t *testing.T, ch <-chan pubsub.Event[*Field]) pubsub.Event[*Field] {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return pubsub.Event[*Field]{}
	}
}

func names(fields []*Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name()
	}
	return out
}
