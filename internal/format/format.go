package format

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Formatter abstracts output formatting.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes JSON output.
type JSONFormatter struct{}

// Write writes JSON payload to a writer.
func (f JSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(payload)
}

// YAMLFormatter writes YAML output using the payload's JSON field names.
type YAMLFormatter struct{}

// Write goes through JSON first so keys and timestamps match the API,
// then re-encodes the node tree as YAML with key order preserved.
func (f YAMLFormatter) Write(w io.Writer, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("convert payload: %w", err)
	}
	clearFlowStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// JSON input parses into flow-style nodes; YAML output should be block style.
func clearFlowStyle(node *yaml.Node) {
	node.Style &^= yaml.FlowStyle
	// Keep strings quoted only where YAML needs it.
	if node.Kind == yaml.ScalarNode {
		node.Style &^= yaml.DoubleQuotedStyle
	}
	for _, child := range node.Content {
		clearFlowStyle(child)
	}
}
