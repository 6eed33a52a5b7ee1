package analyzer

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\\n?(.*?)```")

// locatePayload finds the JSON object in a model response. Candidates are
// tried from most to least literal; the first that decodes as an object wins.
func locatePayload(response string) (map[string]json.RawMessage, bool) {
	for _, candidate := range candidates(response) {
		if obj, ok := decodeObject(candidate); ok {
			return obj, true
		}
	}
	return nil, false
}

func candidates(response string) []string {
	trimmed := strings.TrimSpace(response)
	out := []string{trimmed}

	if m := fencePattern.FindStringSubmatch(trimmed); len(m) > 1 {
		out = append(out, strings.TrimSpace(m[1]))
	}

	out = append(out, balancedObjects(trimmed)...)

	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first != -1 && last > first {
		out = append(out, trimmed[first:last+1])
	}

	return out
}

// balancedObjects returns, for every '{' in s, the shortest substring starting
// there whose braces balance. Braces inside JSON strings are ignored.
func balancedObjects(s string) []string {
	var out []string
	for start := strings.IndexByte(s, '{'); start != -1; {
		if end := matchBrace(s, start); end != -1 {
			out = append(out, s[start:end+1])
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return out
}

func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decodeObject(s string) (map[string]json.RawMessage, bool) {
	if s == "" || s[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
