package wrapper

import (
	"encoding/json"
	"strings"
)

// ExtractJSON implements the three-fallback lenient parsing chain from
// spec §4.2/§9: (1) strip Markdown fences, (2)/(3) parse the outermost
// balanced array or object, trying first whichever bracket opens earlier
// in the text; fail-soft to nil. Grounded on the extractUsageJSON idiom in
// other_examples/10eba484_va6996-travelingman__agents-trip_planner_v2.go.go.
func ExtractJSON(raw string) interface{} {
	text := stripFences(raw)

	var direct interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &direct); err == nil {
		return direct
	}

	pairs := [2][2]byte{{'[', ']'}, {'{', '}'}}
	if o, a := strings.IndexByte(text, '{'), strings.IndexByte(text, '['); o != -1 && (a == -1 || o < a) {
		pairs[0], pairs[1] = pairs[1], pairs[0]
	}
	for _, p := range pairs {
		if span := balancedSpan(text, p[0], p[1]); span != "" {
			var v interface{}
			if err := json.Unmarshal([]byte(span), &v); err == nil {
				return v
			}
		}
	}

	return nil
}

// stripFences removes a leading/trailing ``` or ```json Markdown fence,
// if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// balancedSpan returns the first substring starting at open and ending
// at the matching close bracket, tracking nesting depth and ignoring
// brackets inside string literals.
func balancedSpan(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
