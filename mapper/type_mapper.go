package mapper

import (
	"reflect"
	"sync/atomic"

	"typemapper/internal/typeinfo"
)

// mapFunc is a compiled mapping. dst is invalid or nil in allocate-new mode.
type mapFunc func(src, dst reflect.Value) (reflect.Value, error)

type hookFunc func(src, dst reflect.Value)

type instantiateFunc func(src reflect.Value) reflect.Value

// typeMapper holds the configuration of one type pair in one mode and its
// compiled function. Configuration is guarded by the registry lock; the
// compiled slot is written once and read without locking.
type typeMapper struct {
	key           Key
	mode          Mode
	rules         *RuleSet
	caseSensitive bool
	flatten       bool
	instantiate   instantiateFunc
	before        hookFunc
	after         hookFunc
	base          *Key // Set for mappers created by BaseOn

	compiled   atomic.Pointer[mapFunc]
	projection atomic.Pointer[Projection]
}

func newTypeMapper(key Key, mode Mode, caseSensitive bool) *typeMapper {
	return &typeMapper{
		key:           key,
		mode:          mode,
		rules:         NewRuleSet(),
		caseSensitive: caseSensitive,
	}
}

func (m *typeMapper) isCompiled() bool {
	return m.compiled.Load() != nil
}

// clone derives a mapper for key from m. Rules are copied by value and
// re-resolved against the derived types when the clone compiles; closures
// receive the embedded base values of the derived source and destination.
func (m *typeMapper) clone(key Key) (*typeMapper, error) {
	srcUp, err := typeinfo.Upcaster(key.Source, m.key.Source)
	if err != nil {
		return nil, newError(ErrNotAssignable, key.Source, m.key.Source, "", err)
	}

	dstUp, err := typeinfo.Upcaster(key.Dest, m.key.Dest)
	if err != nil {
		return nil, newError(ErrNotAssignable, key.Dest, m.key.Dest, "", err)
	}

	c := newTypeMapper(key, m.mode, m.caseSensitive)
	c.flatten = m.flatten
	baseKey := m.key
	c.base = &baseKey

	c.rules = m.rules.transform(func(r Rule) Rule {
		r.Source = append([]string(nil), r.Source...)

		if r.Kind == RuleFunction {
			fn := r.Func
			r.Func = func(src reflect.Value) any { return fn(srcUp(src)) }
		}

		return r
	})

	c.before = upcastHook(m.before, srcUp, dstUp)
	c.after = upcastHook(m.after, srcUp, dstUp)

	return c, nil
}

func upcastHook(h hookFunc, srcUp, dstUp func(reflect.Value) reflect.Value) hookFunc {
	if h == nil {
		return nil
	}

	return func(src, dst reflect.Value) {
		h(srcUp(src), dstUp(dst))
	}
}

// MapperInfo is a read-only description of a registered mapper.
type MapperInfo struct {
	Key           Key
	Mode          Mode
	Rules         []Rule
	CaseSensitive bool
	Flatten       bool
	Compiled      bool
	BaseOn        *Key
}

func (m *typeMapper) info() MapperInfo {
	return MapperInfo{
		Key:           m.key,
		Mode:          m.mode,
		Rules:         m.rules.Rules(),
		CaseSensitive: m.caseSensitive,
		Flatten:       m.flatten,
		Compiled:      m.isCompiled(),
		BaseOn:        m.base,
	}
}
