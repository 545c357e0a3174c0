package scrape

// lookupPath walks a decoded JSON value through a sequence of object keys.
// It returns false at the first missing segment or non-object intermediate
// value; a missing path is "no match", not an error.
func lookupPath(v any, path ...string) (any, bool) {
	cur := v
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
