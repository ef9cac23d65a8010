package mapper

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"typemapper/internal/match"
	"typemapper/internal/typeinfo"
)

// memberOp writes one destination member. dst is the settable member value.
type memberOp struct {
	field typeinfo.Field
	apply func(src, dst reflect.Value) error
}

// setter stores a source value into a settable destination value.
type setter func(v, dst reflect.Value) error

// compile builds the mapping function of m. Allocate-new mappers also
// describe their members for projection.
func (m *typeMapper) compile(r *Registry) (mapFunc, *Projection, error) {
	srcInfo, ok := typeinfo.Of(m.key.Source)
	if !ok {
		return nil, nil, newError(ErrUnsupportedType, m.key.Source, m.key.Dest, "", nil)
	}

	dstInfo, ok := typeinfo.Of(m.key.Dest)
	if !ok {
		return nil, nil, newError(ErrUnsupportedType, m.key.Source, m.key.Dest, "", nil)
	}

	var (
		ops     []memberOp
		members []ProjectedMember
		errs    error
	)

	handled := make(map[string]bool)

	for _, rule := range m.rules.Rules() {
		field, ok := dstInfo.Lookup(rule.Member, m.caseSensitive)
		if !ok {
			errs = multierr.Append(errs, m.compileError(rule.Member, notFound(rule.Member, dstInfo)))
			continue
		}

		handled[field.Name] = true

		if rule.Kind == RuleIgnore {
			continue
		}

		op, err := m.ruleOp(r, rule, field, srcInfo)
		if err != nil {
			errs = multierr.Append(errs, m.compileError(field.Name, err))
			continue
		}

		ops = append(ops, op)
		members = append(members, ProjectedMember{
			Dest:   field.Name,
			Kind:   rule.Kind,
			Source: rule.SourcePath(),
			Value:  rule.Value,
		})
	}

	if errs != nil {
		return nil, nil, errs
	}

	for _, field := range dstInfo.Members() {
		if handled[field.Name] {
			continue
		}

		path, ok := m.implicitPath(srcInfo, field)
		if !ok {
			continue
		}

		set, err := r.setter(path.Type(), field.Type, m.mode)
		if err != nil {
			r.logger.Debug("skipping member",
				zap.Stringer("pair", m.key),
				zap.String("member", field.Name),
				zap.Error(err),
			)

			continue
		}

		ops = append(ops, pathOp(field, path, set))

		kind := RuleDirect
		if path.Len() > 1 {
			kind = RuleExpression
		}

		members = append(members, ProjectedMember{Dest: field.Name, Kind: kind, Source: path.String()})
	}

	var proj *Projection
	if m.mode == AllocateNew {
		proj = &Projection{Source: m.key.Source, Dest: m.key.Dest, Members: members}
	}

	return m.assemble(ops), proj, nil
}

func (m *typeMapper) compileError(member string, err error) error {
	return newError(ErrCompilation, m.key.Source, m.key.Dest, member, err)
}

func (m *typeMapper) ruleOp(r *Registry, rule Rule, field typeinfo.Field, srcInfo *typeinfo.Struct) (memberOp, error) {
	switch rule.Kind {
	case RuleDirect, RuleExpression:
		path, err := typeinfo.ResolvePath(m.key.Source, rule.Source, m.caseSensitive)
		if err != nil {
			if len(rule.Source) == 1 {
				return memberOp{}, notFound(rule.Source[0], srcInfo)
			}

			return memberOp{}, err
		}

		set, err := r.setter(path.Type(), field.Type, m.mode)
		if err != nil {
			return memberOp{}, err
		}

		return pathOp(field, path, set), nil

	case RuleConstant:
		value, ok := match.Convert(reflect.ValueOf(rule.Value), field.Type)
		if !ok {
			return memberOp{}, fmt.Errorf("constant of type %T cannot be stored in %s", rule.Value, field.Type)
		}

		return memberOp{field: field, apply: func(_, dst reflect.Value) error {
			dst.Set(value)
			return nil
		}}, nil

	case RuleFunction:
		fn, mode := rule.Func, m.mode

		return memberOp{field: field, apply: func(src, dst reflect.Value) error {
			return r.assign(reflect.ValueOf(fn(src)), dst, mode)
		}}, nil

	default:
		return memberOp{}, fmt.Errorf("unsupported rule kind %s", rule.Kind)
	}
}

// implicitPath finds the source member for a destination member without a
// rule: same name first, then a flattened nested path when enabled.
func (m *typeMapper) implicitPath(src *typeinfo.Struct, field typeinfo.Field) (typeinfo.Path, bool) {
	if sf, ok := src.Lookup(field.Name, m.caseSensitive); ok {
		if sf.Anonymous && typeinfo.IsObject(sf.Type) {
			return typeinfo.Path{}, false
		}

		return typeinfo.Path{Names: []string{sf.Name}, Steps: []typeinfo.Field{sf}}, true
	}

	if !m.flatten {
		return typeinfo.Path{}, false
	}

	return typeinfo.FindFlattened(m.key.Source, match.Tokenize(field.Name), m.caseSensitive)
}

func pathOp(field typeinfo.Field, path typeinfo.Path, set setter) memberOp {
	return memberOp{field: field, apply: func(src, dst reflect.Value) error {
		v, ok := path.Get(src)
		if !ok {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}

		return set(v, dst)
	}}
}

// assemble wraps the member operations into the mapping function:
// before hook, obtain destination, members in order, after hook.
func (m *typeMapper) assemble(ops []memberOp) mapFunc {
	dstType := m.key.Dest
	structType := typeinfo.Deref(dstType)
	isPtr := dstType.Kind() == reflect.Pointer
	mode, instantiate, before, after := m.mode, m.instantiate, m.before, m.after

	return func(src, dst reflect.Value) (reflect.Value, error) {
		if !dst.IsValid() {
			dst = reflect.Zero(dstType)
		}

		if before != nil {
			before(src, dst)
		}

		var out, target reflect.Value

		switch {
		case mode == PopulateExisting && isPtr && !dst.IsNil():
			out, target = dst, dst.Elem()
		case mode == PopulateExisting && !isPtr:
			target = reflect.New(structType).Elem()
			target.Set(dst)
			out = target
		default:
			ptr := reflect.New(structType)

			if instantiate != nil {
				if v := instantiate(src); !typeinfo.IsAbsent(v) {
					if isPtr {
						ptr = v
					} else {
						ptr.Elem().Set(v)
					}
				}
			}

			target = ptr.Elem()

			out = ptr
			if !isPtr {
				out = target
			}
		}

		for _, op := range ops {
			field := typeinfo.FieldForSet(target, op.field.Index)
			if !field.IsValid() {
				continue
			}

			if err := op.apply(src, field); err != nil {
				return reflect.Value{}, fmt.Errorf("member %s: %w", op.field.Name, err)
			}
		}

		if after != nil {
			after(src, out)
		}

		return out, nil
	}
}

// setter decides at compile time how values of type from reach members of
// type to. Object and collection values are dispatched through the registry
// when the mapping runs.
func (r *Registry) setter(from, to reflect.Type, mode Mode) (setter, error) {
	verdict := match.Classify(from, to).Compatibility

	switch {
	case verdict == match.TypeIdentical || verdict == match.TypeAssignable:
		return func(v, dst reflect.Value) error {
			dst.Set(v)
			return nil
		}, nil

	case verdict.Direct():
		return func(v, dst reflect.Value) error {
			out, ok := match.Convert(v, to)
			if !ok {
				return fmt.Errorf("cannot convert %s to %s", v.Type(), to)
			}

			dst.Set(out)

			return nil
		}, nil

	case verdict == match.TypeNested:
		return func(v, dst reflect.Value) error {
			return r.nested(v, dst, mode)
		}, nil

	default:
		return nil, fmt.Errorf("%s is not compatible with %s", from, to)
	}
}

// nested maps an object or collection member through the registry. In
// populate-existing mode a non-nil destination member is reused.
func (r *Registry) nested(v, dst reflect.Value, mode Mode) error {
	if typeinfo.IsAbsent(v) {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	var existing reflect.Value
	if mode == PopulateExisting && !typeinfo.IsAbsent(dst) {
		existing = dst
	}

	out, err := r.dispatch(v.Type(), dst.Type(), v, existing)
	if err != nil {
		return err
	}

	if !out.IsValid() {
		out = reflect.Zero(dst.Type())
	}

	dst.Set(out)

	return nil
}

// assign stores a value whose type is only known at run time, such as the
// result of a function rule.
func (r *Registry) assign(v, dst reflect.Value, mode Mode) error {
	if !v.IsValid() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	set, err := r.setter(v.Type(), dst.Type(), mode)
	if err != nil {
		return err
	}

	return set(v, dst)
}

func notFound(name string, in *typeinfo.Struct) error {
	err := fmt.Errorf("%w: %q in %s", typeinfo.ErrMemberNotFound, name, in.Type)

	if hints := match.Suggest(name, in.Names(), 3); len(hints) > 0 {
		err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(hints, ", "))
	}

	return err
}
