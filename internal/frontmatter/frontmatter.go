// Package frontmatter separates YAML frontmatter from Markdown document bodies.
package frontmatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// Split separates YAML frontmatter (between leading --- delimiters) from the
// Markdown body. If no frontmatter is found, or the YAML is invalid, the
// entire content is body and the returned map is nil.
func Split(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	// Find end delimiter.
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	// Body starts after the closing delimiter line.
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}

	return fm, body
}

// Title returns the frontmatter "title" string if present and non-empty.
func Title(fm map[string]interface{}) string {
	if fm == nil {
		return ""
	}
	t, ok := fm["title"]
	if !ok {
		return ""
	}
	if s, ok := t.(string); ok {
		return s
	}
	return ""
}
