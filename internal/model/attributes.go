package model

import "sort"

// AttributesIncludeMatch reports whether some attribute has both the given
// name and the given value.
func AttributesIncludeMatch(name, value string, attrs AttributeListType) bool {
	for _, a := range attrs {
		if a.Name == name && a.Value == value {
			return true
		}
	}
	return false
}

// AttributesInclude reports whether some attribute has the given name,
// regardless of value.
func AttributesInclude(name string, attrs AttributeListType) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// AttributeValue returns the value of the first attribute with the given
// name, and whether one exists.
func AttributeValue(name string, attrs AttributeListType) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttributesToRecord collapses the ordered list into a name-keyed map.
// Later duplicates overwrite earlier ones.
func AttributesToRecord(attrs AttributeListType) map[string]string {
	rec := make(map[string]string, len(attrs))
	for _, a := range attrs {
		rec[a.Name] = a.Value
	}
	return rec
}

// AttributesFromRecord is the inverse conversion. Go maps carry no insertion
// order, so the result is ordered by name for determinism.
func AttributesFromRecord(rec map[string]string) AttributeListType {
	names := make([]string, 0, len(rec))
	for n := range rec {
		names = append(names, n)
	}
	sort.Strings(names)

	attrs := make(AttributeListType, 0, len(rec))
	for _, n := range names {
		attrs = append(attrs, AttributeType{Name: n, Value: rec[n]})
	}
	return attrs
}
