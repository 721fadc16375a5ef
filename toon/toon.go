// Package toon implements a token-oriented object notation used to serialize
// response sets for LLM prompts. Rows of uniform objects collapse into
// pipe-delimited tables, nested objects become indented key/value blocks and
// plain lists use dash items. The output is deterministic: object keys are
// emitted in sorted order.
package toon

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Encode renders any JSON-shaped value (maps, slices, strings, numbers,
// booleans, nil) in TOON format.
func Encode(value any) string {
	return encode(value, 0)
}

func encode(value any, indent int) string {
	space := strings.Repeat("  ", indent)

	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	case []any:
		if len(v) == 0 {
			return "[]"
		}
		if isUniform(v) {
			return encodeTable(v, indent)
		}
		lines := make([]string, len(v))
		for i, item := range v {
			lines[i] = space + "- " + strings.TrimSpace(encode(item, indent+1))
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		if len(v) == 0 {
			return "{}"
		}
		lines := []string{}
		for _, k := range sortedKeys(v) {
			item := v[k]
			switch nested := item.(type) {
			case []any:
				suffix := ":"
				if isUniform(nested) {
					suffix = fmt.Sprintf("(%d):", len(nested))
				}
				lines = append(lines, space+k+suffix+"\n"+encode(nested, indent+1))
			case map[string]any:
				lines = append(lines, space+k+":\n"+encode(nested, indent+1))
			default:
				lines = append(lines, space+k+": "+encode(item, 0))
			}
		}
		return strings.Join(lines, "\n")
	}

	return fmt.Sprint(value)
}

func encodeTable(rows []any, indent int) string {
	space := strings.Repeat("  ", indent)
	keys := sortedKeys(rows[0].(map[string]any))

	lines := []string{space + "| " + strings.Join(keys, " | ") + " |"}
	for _, row := range rows {
		obj := row.(map[string]any)
		cells := make([]string, len(keys))
		for i, k := range keys {
			cells[i] = cell(obj[k])
		}
		lines = append(lines, space+"| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

// cell renders one table cell: nested structures collapse to a single-line
// {...} block, newlines become spaces so rows stay intact. Literal pipes are
// escaped so a cell value can never shift the columns.
func cell(v any) string {
	var out string
	switch v.(type) {
	case []any, map[string]any:
		out = "{" + strings.ReplaceAll(encode(v, 0), "\n", " ") + "}"
	default:
		out = encode(v, 0)
		out = strings.ReplaceAll(out, "\r", " ")
		out = strings.ReplaceAll(out, "\n", " ")
	}
	return strings.ReplaceAll(out, "|", `\|`)
}

// isUniform reports whether the slice is a list of objects sharing the same
// key set, i.e. encodable as a table.
func isUniform(items []any) bool {
	if len(items) == 0 {
		return false
	}
	first, ok := items[0].(map[string]any)
	if !ok || len(first) == 0 {
		return false
	}
	keys := sortedKeys(first)
	for _, item := range items[1:] {
		obj, ok := item.(map[string]any)
		if !ok || len(obj) != len(first) {
			return false
		}
		for i, k := range sortedKeys(obj) {
			if keys[i] != k {
				return false
			}
		}
	}
	return true
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
