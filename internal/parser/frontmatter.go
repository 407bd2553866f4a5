package parser

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// splitFrontmatter separates a leading metadata block from the body. Three
// serializations are recognised: YAML between --- delimiters, TOML between
// +++ delimiters, and a leading JSON object. A missing or malformed block
// yields a nil map; the body is always returned so parsing can continue.
func splitFrontmatter(data []byte) (map[string]any, string) {
	trimmed := bytes.TrimLeft(data, "\n\r")

	switch {
	case bytes.HasPrefix(trimmed, []byte("---")):
		return splitDelimited(trimmed, data, "---", unmarshalYAML)
	case bytes.HasPrefix(trimmed, []byte("+++")):
		return splitDelimited(trimmed, data, "+++", unmarshalTOML)
	case bytes.HasPrefix(trimmed, []byte("{")):
		return splitJSON(trimmed, data)
	}
	return nil, string(data)
}

// splitDelimited handles the fenced YAML and TOML forms. When the closing
// delimiter is absent the whole input is body; when the block fails to
// decode it is still stripped and only the metadata is dropped.
func splitDelimited(trimmed, original []byte, delim string, unmarshal func([]byte) (map[string]any, error)) (map[string]any, string) {
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(original)
	}

	block := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	fm, err := unmarshal(block)
	if err != nil {
		return nil, body
	}
	return fm, body
}

func splitJSON(trimmed, original []byte) (map[string]any, string) {
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var fm map[string]any
	if err := dec.Decode(&fm); err != nil {
		return nil, string(original)
	}
	body := strings.TrimLeft(string(trimmed[dec.InputOffset():]), "\n\r")
	return fm, body
}

func unmarshalYAML(block []byte) (map[string]any, error) {
	var fm map[string]any
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, err
	}
	return fm, nil
}

func unmarshalTOML(block []byte) (map[string]any, error) {
	var fm map[string]any
	if err := toml.Unmarshal(block, &fm); err != nil {
		return nil, err
	}
	return fm, nil
}
