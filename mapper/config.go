package mapper

import (
	"errors"
	"reflect"
	"strings"

	"go.uber.org/multierr"

	"typemapper/internal/mapping"
	"typemapper/internal/typeinfo"
)

// Config configures a registered type pair in both modes. Every method
// returns the receiver so calls can be chained; problems are collected and
// reported by Err. Configuration is rejected once the pair has compiled.
type Config struct {
	r       *Registry
	key     Key
	mappers []*typeMapper
	err     error
}

func newConfig(r *Registry, key Key, mappers []*typeMapper) *Config {
	return &Config{r: r, key: key, mappers: mappers}
}

// Key returns the configured type pair.
func (c *Config) Key() Key {
	return c.key
}

// Err returns every configuration error recorded so far.
func (c *Config) Err() error {
	return c.err
}

func (c *Config) fail(member string, err error) {
	c.err = multierr.Append(c.err, newError(ErrCompilation, c.key.Source, c.key.Dest, member, err))
}

// update applies fn to each mapper under the registry lock.
func (c *Config) update(member string, fn func(m *typeMapper)) *Config {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()

	for _, m := range c.mappers {
		if m.isCompiled() {
			c.err = multierr.Append(c.err, newError(ErrAlreadyCompiled, c.key.Source, c.key.Dest, member, nil))
			return c
		}
	}

	for _, m := range c.mappers {
		fn(m)
	}

	return c
}

// memberName canonicalizes a destination member name so that rules for the
// same member replace each other regardless of spelling.
func (m *typeMapper) memberName(name string) string {
	if s, ok := typeinfo.Of(m.key.Dest); ok {
		if f, ok := s.Lookup(name, m.caseSensitive); ok {
			return f.Name
		}
	}

	return name
}

func (c *Config) put(rule Rule) *Config {
	return c.update(rule.Member, func(m *typeMapper) {
		r := rule
		r.Member = m.memberName(rule.Member)
		m.rules.Put(r)
	})
}

// Member maps the destination member dest from the source member path
// source, e.g. "Name" or "Address.City".
func (c *Config) Member(dest, source string) *Config {
	path, err := mapping.ParseMemberPath(source)
	if err != nil {
		c.fail(dest, err)
		return c
	}

	kind := RuleDirect
	if len(path.Segments) > 1 {
		kind = RuleExpression
	}

	return c.put(Rule{Member: dest, Kind: kind, Source: path.Names()})
}

// Function computes dest from the source value.
func (c *Config) Function(dest string, fn func(src any) any) *Config {
	if fn == nil {
		c.fail(dest, errors.New("nil function"))
		return c
	}

	return c.function(dest, func(src reflect.Value) any { return fn(interfaceOf(src)) })
}

func (c *Config) function(dest string, fn func(reflect.Value) any) *Config {
	return c.put(Rule{Member: dest, Kind: RuleFunction, Func: fn})
}

// Value assigns a constant to dest.
func (c *Config) Value(dest string, value any) *Config {
	return c.put(Rule{Member: dest, Kind: RuleConstant, Value: value})
}

// Ignore leaves the named destination members untouched.
func (c *Config) Ignore(dests ...string) *Config {
	for _, dest := range dests {
		c.put(Rule{Member: dest, Kind: RuleIgnore})
	}

	return c
}

// CaseSensitive sets member name matching for this pair.
func (c *Config) CaseSensitive(caseSensitive bool) *Config {
	return c.update("", func(m *typeMapper) { m.caseSensitive = caseSensitive })
}

// Flatten enables matching destination members such as AddressCity to
// nested source paths such as Address.City.
func (c *Config) Flatten() *Config {
	return c.update("", func(m *typeMapper) { m.flatten = true })
}

// Instantiate sets the function creating destinations in allocate-new mode.
func (c *Config) Instantiate(fn func(src any) any) *Config {
	dst := c.key.Dest

	return c.instantiate(func(src reflect.Value) reflect.Value {
		out := fn(interfaceOf(src))
		if out == nil {
			return reflect.Value{}
		}

		v, err := valueFor(dst, out)
		if err != nil {
			return reflect.Value{}
		}

		return v
	})
}

func (c *Config) instantiate(fn instantiateFunc) *Config {
	return c.update("", func(m *typeMapper) { m.instantiate = fn })
}

// Before runs fn ahead of member mapping. dst is nil in allocate-new mode.
func (c *Config) Before(fn func(src, dst any)) *Config {
	return c.before(func(src, dst reflect.Value) { fn(interfaceOf(src), interfaceOf(dst)) })
}

func (c *Config) before(fn hookFunc) *Config {
	return c.update("", func(m *typeMapper) { m.before = fn })
}

// After runs fn once every member is mapped.
func (c *Config) After(fn func(src, dst any)) *Config {
	return c.after(func(src, dst reflect.Value) { fn(interfaceOf(src), interfaceOf(dst)) })
}

func (c *Config) after(fn hookFunc) *Config {
	return c.update("", func(m *typeMapper) { m.after = fn })
}

// Rules returns the rules of the pair in registration order.
func (c *Config) Rules() []Rule {
	c.r.mu.RLock()
	defer c.r.mu.RUnlock()

	return c.mappers[0].rules.Rules()
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.key.String())

	for _, r := range c.Rules() {
		b.WriteString("\n  ")
		b.WriteString(r.String())
	}

	return b.String()
}

func interfaceOf(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}

	return v.Interface()
}

// MemberConfiguration is the typed configuration handle of the pair (S, D).
type MemberConfiguration[S, D any] struct {
	cfg *Config
}

// Config returns the untyped handle.
func (mc *MemberConfiguration[S, D]) Config() *Config {
	return mc.cfg
}

// Err returns every configuration error recorded so far.
func (mc *MemberConfiguration[S, D]) Err() error {
	return mc.cfg.Err()
}

// Member maps dest from the source member path source.
func (mc *MemberConfiguration[S, D]) Member(dest, source string) *MemberConfiguration[S, D] {
	mc.cfg.Member(dest, source)
	return mc
}

// Function maps dest from the result of fn.
func (mc *MemberConfiguration[S, D]) Function(dest string, fn func(S) any) *MemberConfiguration[S, D] {
	if fn == nil {
		mc.cfg.fail(dest, errors.New("nil function"))
		return mc
	}

	mc.cfg.function(dest, func(src reflect.Value) any { return fn(as[S](src)) })

	return mc
}

// Value maps dest to a constant.
func (mc *MemberConfiguration[S, D]) Value(dest string, value any) *MemberConfiguration[S, D] {
	mc.cfg.Value(dest, value)
	return mc
}

// Ignore leaves dests untouched.
func (mc *MemberConfiguration[S, D]) Ignore(dests ...string) *MemberConfiguration[S, D] {
	mc.cfg.Ignore(dests...)
	return mc
}

// CaseSensitive toggles case-sensitive member matching.
func (mc *MemberConfiguration[S, D]) CaseSensitive(caseSensitive bool) *MemberConfiguration[S, D] {
	mc.cfg.CaseSensitive(caseSensitive)
	return mc
}

// Flatten enables flattening of nested source members.
func (mc *MemberConfiguration[S, D]) Flatten() *MemberConfiguration[S, D] {
	mc.cfg.Flatten()
	return mc
}

// Instantiate sets the function creating destinations in allocate-new mode.
func (mc *MemberConfiguration[S, D]) Instantiate(fn func(S) D) *MemberConfiguration[S, D] {
	mc.cfg.instantiate(func(src reflect.Value) reflect.Value {
		out := fn(as[S](src))
		return reflect.ValueOf(&out).Elem()
	})

	return mc
}

// Before runs fn ahead of member mapping with the destination as supplied:
// the zero D in allocate-new mode.
func (mc *MemberConfiguration[S, D]) Before(fn func(S, D)) *MemberConfiguration[S, D] {
	mc.cfg.before(func(src, dst reflect.Value) { fn(as[S](src), as[D](dst)) })
	return mc
}

// After runs fn on the mapped destination.
func (mc *MemberConfiguration[S, D]) After(fn func(S, D)) *MemberConfiguration[S, D] {
	mc.cfg.after(func(src, dst reflect.Value) { fn(as[S](src), as[D](dst)) })
	return mc
}

func as[T any](v reflect.Value) T {
	var zero T
	if !v.IsValid() {
		return zero
	}

	out, _ := v.Interface().(T)

	return out
}
