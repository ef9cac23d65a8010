package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"typemapper/internal/mapping"
	"typemapper/internal/typeinfo"
)

// TypeCatalog resolves the type names used in mapping profiles. A type is
// known by its qualified name ("store.Order"), its full name
// ("example.com/app/store.Order") and, while unambiguous, its bare name.
type TypeCatalog struct {
	types map[string]reflect.Type
	bare  map[string][]reflect.Type
}

// NewTypeCatalog returns a catalog holding types.
func NewTypeCatalog(types ...reflect.Type) *TypeCatalog {
	c := &TypeCatalog{
		types: make(map[string]reflect.Type),
		bare:  make(map[string][]reflect.Type),
	}

	for _, t := range types {
		c.Add(t)
	}

	return c
}

// Add adds the named type t. Pointer types are added by their element.
func (c *TypeCatalog) Add(t reflect.Type) *TypeCatalog {
	t = typeinfo.Deref(t)
	if t == nil || t.Name() == "" {
		return c
	}

	c.types[t.String()] = t
	c.types[t.PkgPath()+"."+t.Name()] = t

	for _, known := range c.bare[t.Name()] {
		if known == t {
			return c
		}
	}

	c.bare[t.Name()] = append(c.bare[t.Name()], t)

	return c
}

// AddType adds T to the catalog.
func AddType[T any](c *TypeCatalog) *TypeCatalog {
	return c.Add(reflect.TypeFor[T]())
}

// Lookup resolves name. A leading "*" yields the pointer type.
func (c *TypeCatalog) Lookup(name string) (reflect.Type, bool) {
	if elem, ok := strings.CutPrefix(name, "*"); ok {
		t, ok := c.Lookup(elem)
		if !ok {
			return nil, false
		}

		return reflect.PointerTo(t), true
	}

	if t, ok := c.types[name]; ok {
		return t, true
	}

	if candidates := c.bare[name]; len(candidates) == 1 {
		return candidates[0], true
	}

	return nil, false
}

func (c *TypeCatalog) resolve(name string) (reflect.Type, error) {
	t, ok := c.Lookup(name)
	if !ok {
		if len(c.bare[name]) > 1 {
			return nil, fmt.Errorf("type %q is ambiguous, qualify it with its package", name)
		}

		return nil, fmt.Errorf("type %q is not in the catalog", name)
	}

	return t, nil
}

// LoadProfile reads the YAML profile at path and applies it.
func (r *Registry) LoadProfile(path string, catalog *TypeCatalog) error {
	pf, err := mapping.LoadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	return r.ApplyProfile(pf, catalog)
}

// ApplyProfile registers and configures every mapping of pf in file order.
// Every failure is reported. A mapping that fails is not registered; the
// mappings that could be applied stay registered.
func (r *Registry) ApplyProfile(pf *mapping.ProfileFile, catalog *TypeCatalog) error {
	if res := mapping.ValidateStructure(pf); !res.IsValid() {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, res.Error())
	}

	if catalog == nil {
		catalog = NewTypeCatalog()
	}

	var errs error

	for i := range pf.TypeMappings {
		tm := &pf.TypeMappings[i]

		if err := r.applyMapping(pf, tm, catalog); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: mapping %s: %w", ErrInvalidProfile, tm.Pair(), err))
		}
	}

	r.logger.Debug("applied mapping profile",
		zap.Int("mappings", len(pf.TypeMappings)),
		zap.Int("failed", len(multierr.Errors(errs))))

	return errs
}

func (r *Registry) applyMapping(pf *mapping.ProfileFile, tm *mapping.TypeMapping, catalog *TypeCatalog) error {
	src, srcErr := catalog.resolve(tm.Source)
	dst, dstErr := catalog.resolve(tm.Target)

	if err := errors.Join(srcErr, dstErr); err != nil {
		return err
	}

	cfg, err := r.registerProfiled(tm, src, dst, catalog)
	if err != nil {
		return err
	}

	caseSensitive := r.CaseSensitive()

	switch {
	case tm.CaseSensitive != nil:
		caseSensitive = *tm.CaseSensitive
		cfg.CaseSensitive(caseSensitive)
	case pf.CaseSensitive != nil:
		caseSensitive = *pf.CaseSensitive
		cfg.CaseSensitive(caseSensitive)
	}

	if tm.Flatten {
		cfg.Flatten()
	}

	for _, ref := range tm.Members {
		cfg.Member(ref.Target, ref.Source)
	}

	for _, v := range tm.Values {
		value, err := decodeValue(dst, v, caseSensitive)
		if err != nil {
			cfg.fail(v.Target, err)
			continue
		}

		cfg.Value(v.Target, value)
	}

	if len(tm.Ignore) > 0 {
		cfg.Ignore(tm.Ignore...)
	}

	if err := cfg.Err(); err != nil {
		r.discard(cfg.Key())
		return err
	}

	return nil
}

func (r *Registry) registerProfiled(tm *mapping.TypeMapping, src, dst reflect.Type, catalog *TypeCatalog) (*Config, error) {
	if tm.BaseOn == nil {
		return r.RegisterTypes(src, dst)
	}

	srcBase, srcErr := catalog.resolve(tm.BaseOn.Source)
	dstBase, dstErr := catalog.resolve(tm.BaseOn.Target)

	if err := errors.Join(srcErr, dstErr); err != nil {
		return nil, fmt.Errorf("base_on: %w", err)
	}

	return r.BaseOnTypes(src, srcBase, dst, dstBase)
}

// decodeValue decodes a profile constant into the type of the destination
// member it is assigned to.
func decodeValue(dst reflect.Type, v mapping.ValueRef, caseSensitive bool) (any, error) {
	s, ok := typeinfo.Of(dst)
	if !ok {
		return nil, fmt.Errorf("%s is not a struct", dst)
	}

	f, ok := s.Lookup(v.Target, caseSensitive)
	if !ok {
		return nil, notFound(v.Target, s)
	}

	out := reflect.New(f.Type)
	if err := v.Decode(out.Interface()); err != nil {
		return nil, fmt.Errorf("value for %s: %w", f.Name, err)
	}

	return out.Elem().Interface(), nil
}
