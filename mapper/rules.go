package mapper

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"typemapper/internal/common"
)

// RuleKind is the closed set of member rule variants.
type RuleKind int

const (
	// RuleDirect copies a single, possibly renamed, source member.
	RuleDirect RuleKind = iota + 1
	// RuleExpression reads a nested source path such as "Address.City".
	RuleExpression
	// RuleFunction computes the value with a closure over the source.
	RuleFunction
	// RuleConstant assigns a fixed value.
	RuleConstant
	// RuleIgnore leaves the member untouched.
	RuleIgnore
)

func (k RuleKind) String() string {
	switch k {
	case RuleDirect:
		return "direct"
	case RuleExpression:
		return "expression"
	case RuleFunction:
		return "function"
	case RuleConstant:
		return "constant"
	case RuleIgnore:
		return "ignore"
	default:
		return common.UnknownStr
	}
}

// Rule governs one destination member.
type Rule struct {
	Member string
	Kind   RuleKind
	Source []string                    // Source path segments (direct, expression)
	Func   func(src reflect.Value) any // Function rules; src has the mapper's source type
	Value  any                         // Constant rules
}

// SourcePath returns the dotted source path of a direct or expression rule.
func (r Rule) SourcePath() string {
	return strings.Join(r.Source, ".")
}

func (r Rule) String() string {
	switch r.Kind {
	case RuleDirect, RuleExpression:
		return r.Member + " <- " + r.SourcePath()
	case RuleConstant:
		return fmt.Sprintf("%s <- %v", r.Member, r.Value)
	default:
		return r.Member + " <- " + r.Kind.String()
	}
}

// RuleSet is an insertion-ordered set of rules keyed by destination member.
// Putting a rule for a member that already has one replaces it in place.
type RuleSet struct {
	rules *linkedhashmap.Map
}

// NewRuleSet returns an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{rules: linkedhashmap.New()}
}

// Put adds or replaces the rule for r.Member.
func (s *RuleSet) Put(r Rule) {
	s.rules.Put(r.Member, r)
}

// Get returns the rule for member.
func (s *RuleSet) Get(member string) (Rule, bool) {
	v, ok := s.rules.Get(member)
	if !ok {
		return Rule{}, false
	}

	return v.(Rule), true
}

// Rules returns the rules in first-registration order.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, 0, s.rules.Size())

	it := s.rules.Iterator()
	for it.Next() {
		out = append(out, it.Value().(Rule))
	}

	return out
}

func (s *RuleSet) Len() int {
	return s.rules.Size()
}

// Clone returns an independent copy. Source path slices are copied too.
func (s *RuleSet) Clone() *RuleSet {
	return s.transform(func(r Rule) Rule {
		r.Source = append([]string(nil), r.Source...)
		return r
	})
}

// transform returns a copy of the set with fn applied to every rule.
func (s *RuleSet) transform(fn func(Rule) Rule) *RuleSet {
	out := NewRuleSet()

	for _, r := range s.Rules() {
		out.Put(fn(r))
	}

	return out
}
