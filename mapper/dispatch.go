package mapper

import (
	"fmt"
	"reflect"

	"typemapper/internal/typeinfo"
)

// Map maps src to a new D. When S is an interface type, the dynamic type of
// src selects the mapping. Unregistered pairs are registered with default
// configuration on first use unless the registry is strict.
func Map[S, D any](r *Registry, src S) (D, error) {
	return mapTyped[S, D](r, src, reflect.Value{})
}

// MapInto maps src into dst. A nil dst behaves like Map. Pointer
// destinations are updated in place; value destinations are returned updated.
func MapInto[S, D any](r *Registry, src S, dst D) (D, error) {
	return mapTyped[S, D](r, src, reflect.ValueOf(&dst).Elem())
}

func mapTyped[S, D any](r *Registry, src S, dst reflect.Value) (D, error) {
	var zero D

	srcType, srcValue := sourceOf(src)
	if !srcValue.IsValid() {
		return zero, nil
	}

	out, err := r.dispatch(srcType, reflect.TypeFor[D](), srcValue, dst)
	if err != nil {
		return zero, err
	}

	return as[D](out), nil
}

func sourceOf[S any](src S) (reflect.Type, reflect.Value) {
	t := reflect.TypeFor[S]()
	if t.Kind() != reflect.Interface {
		return t, reflect.ValueOf(&src).Elem()
	}

	v := reflect.ValueOf(any(src))
	if !v.IsValid() {
		return t, v
	}

	return v.Type(), v
}

// MapType maps src, which must hold a srcType value or nil, to a new dstType value.
func (r *Registry) MapType(srcType, dstType reflect.Type, src any) (any, error) {
	return r.MapTypeInto(srcType, dstType, src, nil)
}

// MapTypeInto maps src into dst, a dstType value or nil.
func (r *Registry) MapTypeInto(srcType, dstType reflect.Type, src, dst any) (any, error) {
	srcValue, err := valueFor(srcType, src)
	if err != nil {
		return nil, newError(ErrUnsupportedType, srcType, dstType, "", err)
	}

	dstValue, err := valueFor(dstType, dst)
	if err != nil {
		return nil, newError(ErrUnsupportedType, srcType, dstType, "", err)
	}

	out, err := r.dispatch(srcType, dstType, srcValue, dstValue)
	if err != nil {
		return nil, err
	}

	if !out.IsValid() {
		out = reflect.Zero(dstType)
	}

	return out.Interface(), nil
}

func valueFor(t reflect.Type, x any) (reflect.Value, error) {
	if x == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(x)
	if v.Type() == t {
		return v, nil
	}

	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("value of type %s is not a %s", v.Type(), t)
	}

	out := reflect.New(t).Elem()
	out.Set(v)

	return out, nil
}

// dispatch routes one mapping request:
//  1. a custom mapper for the pair always wins;
//  2. a non-nil destination selects populate-existing, otherwise allocate-new;
//  3. a registered type mapper maps non-nil sources, nil sources give the zero value;
//  4. collection pairs use the compiled collection function of the mode;
//  5. other pairs are registered implicitly and retried once.
func (r *Registry) dispatch(srcType, dstType reflect.Type, src, dst reflect.Value) (reflect.Value, error) {
	return r.dispatchTrial(srcType, dstType, src, dst, false)
}

func (r *Registry) dispatchTrial(srcType, dstType reflect.Type, src, dst reflect.Value, retried bool) (reflect.Value, error) {
	key := KeyOf(srcType, dstType)

	mode := AllocateNew
	if !typeinfo.IsAbsent(dst) {
		mode = PopulateExisting
	}

	r.mu.RLock()
	custom := r.customs[key]
	m := r.services[mode].mappers[key]
	collection := r.services[mode].collections[key]
	r.mu.RUnlock()

	switch {
	case custom != nil:
		return custom.invoke(src, dst)

	case m != nil:
		if typeinfo.IsAbsent(src) {
			return reflect.Zero(dstType), nil
		}

		fn, err := r.compiled(m)
		if err != nil {
			return reflect.Value{}, err
		}

		return fn(src, dst)

	case typeinfo.IsCollection(srcType) && typeinfo.IsCollection(dstType):
		if typeinfo.IsAbsent(src) {
			return reflect.Zero(dstType), nil
		}

		if collection == nil {
			var err error
			if collection, err = r.collection(mode, key); err != nil {
				return reflect.Value{}, err
			}
		}

		return collection(src, dst)

	case retried || r.strict:
		return reflect.Value{}, newError(ErrMappingNotFound, srcType, dstType, "", nil)

	default:
		r.mu.Lock()
		err := r.autoRegisterLocked(key)
		r.mu.Unlock()

		if err != nil {
			return reflect.Value{}, err
		}

		return r.dispatchTrial(srcType, dstType, src, dst, true)
	}
}

func (r *Registry) collection(mode Mode, key Key) (mapFunc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.services[mode].collectionLocked(r, key)
}
