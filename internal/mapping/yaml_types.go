package mapping

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"typemapper/internal/common"
)

// --- StringOrArray YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
// Accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for StringOrArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// --- MemberMap YAML methods ---

// UnmarshalYAML reads a mapping node keeping the order of its keys.
func (m *MemberMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: members must be a mapping of target to source", node.Line)
	}

	seen := make(map[string]bool, len(node.Content)/2)
	result := make(MemberMap, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var ref MemberRef

		if err := node.Content[i].Decode(&ref.Target); err != nil {
			return err
		}

		if err := node.Content[i+1].Decode(&ref.Source); err != nil {
			return fmt.Errorf("member %s: %w", ref.Target, err)
		}

		if seen[ref.Target] {
			return fmt.Errorf("line %d: duplicate member %q", node.Content[i].Line, ref.Target)
		}

		seen[ref.Target] = true

		result = append(result, ref)
	}

	*m = result

	return nil
}

// MarshalYAML writes the members as an ordered mapping.
func (m MemberMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, ref := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: ref.Target},
			&yaml.Node{Kind: yaml.ScalarNode, Value: ref.Source},
		)
	}

	return node, nil
}

// --- ValueMap ---

// ValueRef is a constant for one target member. The raw node is kept until
// the member type is known.
type ValueRef struct {
	Target string
	Node   *yaml.Node
}

// Decode decodes the constant into out.
func (v ValueRef) Decode(out any) error {
	if v.Node == nil {
		return errors.New("empty value")
	}

	return v.Node.Decode(out)
}

// ValueMap is an ordered YAML mapping of target member to constant.
type ValueMap []ValueRef

// UnmarshalYAML reads a mapping node keeping the order of its keys.
func (m *ValueMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: values must be a mapping of target to constant", node.Line)
	}

	seen := make(map[string]bool, len(node.Content)/2)
	result := make(ValueMap, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var target string

		if err := node.Content[i].Decode(&target); err != nil {
			return err
		}

		if seen[target] {
			return fmt.Errorf("line %d: duplicate value %q", node.Content[i].Line, target)
		}

		seen[target] = true

		result = append(result, ValueRef{Target: target, Node: node.Content[i+1]})
	}

	*m = result

	return nil
}

// MarshalYAML writes the values as an ordered mapping.
func (m ValueMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, ref := range m {
		value := ref.Node
		if value == nil {
			value = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}

		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: ref.Target}, value)
	}

	return node, nil
}
