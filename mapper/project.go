package mapper

import (
	"iter"
	"reflect"

	"typemapper/internal/typeinfo"
)

// Queryable is a lazily evaluated sequence of T, such as the rows of a query.
type Queryable[T any] interface {
	All() iter.Seq2[T, error]
}

// ProjectionAware sources receive the projection before they are iterated,
// so they can narrow what they fetch to the members it reads.
type ProjectionAware interface {
	SetProjection(p *Projection)
}

// Projection describes how an allocate-new mapping builds its destination.
type Projection struct {
	Source  reflect.Type
	Dest    reflect.Type
	Members []ProjectedMember
}

// ProjectedMember is one destination member of a projection.
type ProjectedMember struct {
	Dest   string
	Kind   RuleKind
	Source string // Dotted source path for direct and expression members
	Value  any    // Constant members
}

// SourcePaths returns the source paths the projection reads, in member order.
func (p *Projection) SourcePaths() []string {
	var out []string

	for _, m := range p.Members {
		if m.Source != "" {
			out = append(out, m.Source)
		}
	}

	return out
}

// Project maps every element of q with the allocate-new mapping of (S, D).
// The pair must be registered; Project never registers implicitly and
// returns ErrMappingNotFound otherwise.
func Project[S, D any](r *Registry, q Queryable[S]) (Queryable[D], error) {
	key := KeyFor[S, D]()

	r.mu.RLock()
	m := r.services[AllocateNew].mappers[key]
	r.mu.RUnlock()

	if m == nil {
		return nil, newError(ErrMappingNotFound, key.Source, key.Dest, "", nil)
	}

	fn, err := r.compiled(m)
	if err != nil {
		return nil, err
	}

	proj := m.projection.Load()

	if aware, ok := q.(ProjectionAware); ok {
		aware.SetProjection(proj)
	}

	return &projected[S, D]{source: q, fn: fn, proj: proj}, nil
}

type projected[S, D any] struct {
	source Queryable[S]
	fn     mapFunc
	proj   *Projection
}

func (p *projected[S, D]) Projection() *Projection {
	return p.proj
}

func (p *projected[S, D]) All() iter.Seq2[D, error] {
	return func(yield func(D, error) bool) {
		var zero D

		for src, err := range p.source.All() {
			if err != nil {
				if !yield(zero, err) {
					return
				}

				continue
			}

			v := reflect.ValueOf(&src).Elem()
			if typeinfo.IsAbsent(v) {
				if !yield(zero, nil) {
					return
				}

				continue
			}

			out, err := p.fn(v, reflect.Value{})
			if err != nil {
				if !yield(zero, err) {
					return
				}

				continue
			}

			if !yield(as[D](out), nil) {
				return
			}
		}
	}
}

// FromSlice returns an in-memory Queryable over items.
func FromSlice[T any](items []T) Queryable[T] {
	return sliceQuery[T](items)
}

type sliceQuery[T any] []T

func (s sliceQuery[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range s {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Collect drains q into a slice, stopping at the first error.
func Collect[T any](q Queryable[T]) ([]T, error) {
	var out []T

	for item, err := range q.All() {
		if err != nil {
			return out, err
		}

		out = append(out, item)
	}

	return out, nil
}
