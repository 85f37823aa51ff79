package value

import (
	"strconv"

	"go.yaml.in/yaml/v4"
)

func parseYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Null(), &ParseError{Format: YAML, Reason: err.Error()}
	}
	v, err := yamlNodeToValue(&root)
	if err != nil {
		return Null(), &ParseError{Format: YAML, Reason: err.Error()}
	}
	return v, nil
}

// yamlNodeToValue walks the decoded document's yaml.Node tree directly
// rather than unmarshalling into `any`: MappingNode.Content is the source
// document's own key/value order, where decoding into a Go map would not
// be.
func yamlNodeToValue(node *yaml.Node) (Value, error) {
	if node == nil {
		return Null(), nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return yamlNodeToValue(node.Content[0])
	case yaml.AliasNode:
		return yamlNodeToValue(node.Alias)
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, err := yamlKeyString(node.Content[i])
			if err != nil {
				return Null(), err
			}
			val, err := yamlNodeToValue(node.Content[i+1])
			if err != nil {
				return Null(), err
			}
			m.Set(key, val)
		}
		return MapOf(m), nil
	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, c := range node.Content {
			v, err := yamlNodeToValue(c)
			if err != nil {
				return Null(), err
			}
			items[i] = v
		}
		return Seq(items...), nil
	case yaml.ScalarNode:
		return yamlScalarToValue(node)
	default:
		return Null(), nil
	}
}

// yamlKeyString resolves a mapping key node to its string form. Non-string
// scalar keys (rare, but legal YAML) fall back to their literal text.
func yamlKeyString(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return toKeyString(node.Value), nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return node.Value, nil
	}
	return s, nil
}

func yamlScalarToValue(node *yaml.Node) (Value, error) {
	switch node.Tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Null(), err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return Null(), err
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Null(), err
		}
		return Float(f), nil
	default:
		return Str(node.Value), nil
	}
}

// emitYAML walks the Value tree into a yaml.Node tree rather than calling
// yaml.Marshal(map[string]any) directly: MappingNode content is an ordered
// slice, so this is the only way to keep Map insertion order in the
// emitted document.
func emitYAML(v Value) ([]byte, error) {
	node := valueToYAMLNode(v)
	return yaml.Marshal(node)
}

func valueToYAMLNode(v Value) *yaml.Node {
	switch v.Kind() {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool())}
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Int(), 10)}
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.Float(), 'g', -1, 64)}
	case KindStr:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str()}
	case KindSeq:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Seq() {
			n.Content = append(n.Content, valueToYAMLNode(item))
		}
		return n
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for pair := v.Map().Oldest(); pair != nil; pair = pair.Next() {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key})
			n.Content = append(n.Content, valueToYAMLNode(pair.Value))
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
