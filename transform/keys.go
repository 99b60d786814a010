package transform

import (
	"strings"
	"unicode"
)

// MaxDepth bounds the tree walk. Containers nested deeper pass through
// untouched rather than risking unbounded work on hostile payloads.
const MaxDepth = 64

// toSnake converts a camelCase key to snake_case. Runs of capitals are kept
// together ("taxID" -> "tax_id").
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
			if prevLower || (prevUpper && nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toCamel converts a snake_case key to lower-camelCase.
func toCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			b.WriteString(p)
			first = false
			continue
		}
		r := []rune(p)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}

// frame is one unit of pending work in the iterative tree walk. Exactly one
// of srcMap/srcSlice is set; the dst container is already wired into the
// output tree so child writes land in place.
type frame struct {
	srcMap   Record
	dstMap   Record
	srcSlice []any
	dstSlice []any
	depth    int
}

// convertKeys rebuilds rec with every map key passed through conv, walking
// nested records and arrays iteratively over an explicit stack.
func convertKeys(rec Record, conv func(string) string) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	stack := []frame{{srcMap: rec, dstMap: out}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.srcMap != nil {
			for k, v := range f.srcMap {
				f.dstMap[conv(k)] = allocChild(v, f.depth, &stack)
			}
			continue
		}
		for i, v := range f.srcSlice {
			f.dstSlice[i] = allocChild(v, f.depth, &stack)
		}
	}
	return out
}

// allocChild returns the value to place in the destination container,
// scheduling nested containers for later processing. Past MaxDepth the
// subtree is passed through unconverted.
func allocChild(v any, depth int, stack *[]frame) any {
	if depth >= MaxDepth {
		return v
	}
	switch t := v.(type) {
	case Record:
		child := make(Record, len(t))
		*stack = append(*stack, frame{srcMap: t, dstMap: child, depth: depth + 1})
		return child
	case []any:
		child := make([]any, len(t))
		*stack = append(*stack, frame{srcSlice: t, dstSlice: child, depth: depth + 1})
		return child
	default:
		return v
	}
}
