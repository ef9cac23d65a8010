package mapper

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"typemapper/internal/typeinfo"
)

// Context is the input of a custom mapper.
type Context[S, D any] struct {
	Source S
	// Destination holds the caller's destination in populate-existing calls.
	Destination    D
	HasDestination bool
}

// CustomMapper maps S to D with user code. It takes precedence over any
// registered type mapper for the same pair.
type CustomMapper[S, D any] interface {
	Map(ctx *Context[S, D]) (D, error)
}

// CustomFunc adapts a function to CustomMapper. The destination is ignored.
type CustomFunc[S, D any] func(S) (D, error)

// Map calls f with the source.
func (f CustomFunc[S, D]) Map(ctx *Context[S, D]) (D, error) {
	return f(ctx.Source)
}

// customEntry stores the factory of a custom mapper and the type-erased
// invoker built from it on first use.
type customEntry struct {
	key     Key
	build   func() mapFunc
	once    sync.Once
	invoker mapFunc
}

func (e *customEntry) invoke(src, dst reflect.Value) (reflect.Value, error) {
	e.once.Do(func() { e.invoker = e.build() })

	return e.invoker(src, dst)
}

// RegisterCustom registers fn as the mapping of (S, D).
func RegisterCustom[S, D any](r *Registry, fn func(S) (D, error)) error {
	m := CustomFunc[S, D](fn)

	return RegisterCustomMapper(r, func() CustomMapper[S, D] { return m })
}

// RegisterCustomMapper registers a factory producing the custom mapper of
// (S, D). The factory runs once per mapping call.
func RegisterCustomMapper[S, D any](r *Registry, factory func() CustomMapper[S, D]) error {
	key := KeyFor[S, D]()

	entry := &customEntry{
		key: key,
		build: func() mapFunc {
			return func(src, dst reflect.Value) (reflect.Value, error) {
				ctx := &Context[S, D]{}

				if src.IsValid() {
					ctx.Source = src.Interface().(S)
				}

				if !typeinfo.IsAbsent(dst) {
					ctx.Destination = dst.Interface().(D)
					ctx.HasDestination = true
				}

				out, err := factory().Map(ctx)
				if err != nil {
					return reflect.Value{}, fmt.Errorf("custom mapper %s: %w", key, err)
				}

				return reflect.ValueOf(&out).Elem(), nil
			}
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customs[key]; ok {
		return newError(ErrAlreadyRegistered, key.Source, key.Dest, "", nil)
	}

	r.customs[key] = entry
	r.logger.Debug("registered custom mapper", r.pairFields(key, AllModes)...)

	return nil
}

// MapWith maps src with a one-off custom mapper, bypassing the registry.
func MapWith[S, D any](src S, m CustomMapper[S, D]) (D, error) {
	return m.Map(&Context[S, D]{Source: src})
}

// MapWithInto is MapWith with a destination for the custom mapper to fill.
func MapWithInto[S, D any](src S, dst D, m CustomMapper[S, D]) (D, error) {
	return m.Map(&Context[S, D]{Source: src, Destination: dst, HasDestination: true})
}

func (r *Registry) customKeys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]Key, 0, len(r.customs))
	for k := range r.customs {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b Key) int {
		return strings.Compare(a.String(), b.String())
	})

	return keys
}
