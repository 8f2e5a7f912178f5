package normalize

// unsetValue distinguishes a field that was never written from one explicitly
// set to null. Document payloads built from partial data carry this sentinel
// until they reach the persistence boundary.
type unsetValue struct{}

// Unset marks a document field with no value. Sanitize removes it; an
// explicit nil (null) survives.
var Unset any = unsetValue{}

// Sanitize recursively removes unset fields from a document before it is
// persisted. Maps lose unset entries, slices lose unset elements, and the
// walk descends into nested maps and slices. Explicit nulls are preserved.
func Sanitize(v any) any {
	switch val := v.(type) {
	case unsetValue:
		return Unset
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			if _, unset := elem.(unsetValue); unset {
				continue
			}
			out[k] = Sanitize(elem)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, elem := range val {
			if _, unset := elem.(unsetValue); unset {
				continue
			}
			out = append(out, Sanitize(elem))
		}
		return out
	default:
		return v
	}
}
