package snapshot

import (
	"bytes"
	"encoding/json"
	"sort"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/flarebyte/taskrun/internal/plugin"
)

// Of returns a plain representation of p: the file list and the values.
// Text data is kept as a string; binary data is summarized by its size.
func Of(p plugin.Props) map[string]any {
	files := make([]any, 0, len(p.Files))
	for _, f := range p.Files {
		m := map[string]any{"path": f.Path}
		switch {
		case f.Data == nil:
		case utf8.Valid(f.Data):
			m["data"] = string(f.Data)
		default:
			m["bytes"] = len(f.Data)
		}
		if f.Map != nil {
			m["map"] = f.Map
		}
		files = append(files, m)
	}
	out := map[string]any{"files": files}
	if len(p.Values) > 0 {
		out["values"] = p.Values
	}
	return out
}

// YAML returns canonical YAML bytes: mapping keys sorted, two-space indent,
// exactly one trailing newline.
func YAML(v map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(canonicalNode(v)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// JSON returns a single JSON line.
func JSON(v map[string]any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func canonicalNode(v any) *yaml.Node {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case map[string]any:
		return canonicalMapNode(x)
	case map[any]any:
		m := map[string]any{}
		for k, vv := range x {
			if ks, ok := k.(string); ok {
				m[ks] = vv
			}
		}
		return canonicalMapNode(m)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range x {
			n.Content = append(n.Content, canonicalNode(it))
		}
		return n
	default:
		return scalarFrom(x)
	}
}

func canonicalMapNode(m map[string]any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if len(m) == 0 {
		return n
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Content = append(n.Content, scalarNode(k), canonicalNode(m[k]))
	}
	return n
}
