package mapper

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"typemapper/internal/typeinfo"
)

// compileCollectionLocked builds the element-wise mapping between two
// collection types. Object elements go through the element pair mapper, which
// is registered and compiled here if needed.
func (r *Registry) compileCollectionLocked(key Key, mode Mode) (mapFunc, error) {
	if !typeinfo.IsCollection(key.Source) || !typeinfo.IsCollection(key.Dest) {
		return nil, newError(ErrUnsupportedType, key.Source, key.Dest, "", errors.New("not a collection pair"))
	}

	srcElem, dstElem := key.Source.Elem(), key.Dest.Elem()

	if typeinfo.IsObject(srcElem) && typeinfo.IsObject(dstElem) {
		if err := r.prepareElementLocked(KeyOf(srcElem, dstElem), mode); err != nil {
			return nil, err
		}
	}

	set, err := r.setter(srcElem, dstElem, mode)
	if err != nil {
		return nil, newError(ErrCompilation, key.Source, key.Dest, "", err)
	}

	dstType := key.Dest

	fn := func(src, dst reflect.Value) (reflect.Value, error) {
		n := src.Len()

		var out reflect.Value

		switch {
		case dstType.Kind() == reflect.Array:
			out = reflect.New(dstType).Elem()
			if mode == PopulateExisting && dst.IsValid() {
				out.Set(dst)
			}

			n = min(n, out.Len())
		case mode == PopulateExisting && !typeinfo.IsAbsent(dst) && dst.Len() == n:
			out = dst
		default:
			out = reflect.MakeSlice(dstType, n, n)
		}

		for i := range n {
			if err := set(src.Index(i), out.Index(i)); err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
		}

		return out, nil
	}

	r.logger.Debug("compiled collection mapping", r.pairFields(key, mode)...)

	return fn, nil
}

// prepareElementLocked makes sure the element pair of a collection can be
// dispatched: custom mappers are used as is, missing pairs are registered
// implicitly unless the registry is strict, and the mapper is compiled.
func (r *Registry) prepareElementLocked(key Key, mode Mode) error {
	if _, ok := r.customs[key]; ok {
		return nil
	}

	svc := r.services[mode]

	m, ok := svc.mappers[key]
	if !ok {
		if r.strict {
			return newError(ErrMappingNotFound, key.Source, key.Dest, "", nil)
		}

		if err := r.autoRegisterLocked(key); err != nil {
			return err
		}

		m = svc.mappers[key]
	}

	_, err := r.compileLocked(m)

	return err
}

// PrecompileCollectionTypes compiles the collection mapping between two
// slice or array types for the given modes (all modes when none are given).
func (r *Registry) PrecompileCollectionTypes(src, dst reflect.Type, modes ...Mode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mode := AllModes
	if len(modes) > 0 {
		mode = 0
		for _, m := range modes {
			mode |= m
		}
	}

	key := KeyOf(src, dst)

	var errs []error

	for _, single := range mode.modes() {
		if _, err := r.services[single].collectionLocked(r, key); err != nil {
			errs = append(errs, err)
		}
	}

	return multierr.Combine(errs...)
}

// PrecompileCollection compiles the collection mapping between the slice or
// array types S and D.
func PrecompileCollection[S, D any](r *Registry, modes ...Mode) error {
	return r.PrecompileCollectionTypes(reflect.TypeFor[S](), reflect.TypeFor[D](), modes...)
}
