package wiretype

import "sort"

// ============================================================
// Canonical map ordering
// ============================================================
//
// Map pairs are encoded in ascending key order so that logically
// equal mappings always serialize to identical bytes, regardless of
// insertion order. This is what makes encodings reproducible and
// content hashing meaningful.

// compareKeys orders two map keys by their natural ordering. Both
// keys have the same primitive kind once validation has passed;
// mismatched kinds sort by kind as a stable fallback.
func compareKeys(a, b *Value) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	switch a.kind {
	case ValBool:
		// false < true
		if a.boolVal == b.boolVal {
			return 0
		}
		if !a.boolVal {
			return -1
		}
		return 1
	case ValInt:
		switch {
		case a.intVal < b.intVal:
			return -1
		case a.intVal > b.intVal:
			return 1
		}
		return 0
	case ValUint:
		switch {
		case a.uintVal < b.uintVal:
			return -1
		case a.uintVal > b.uintVal:
			return 1
		}
		return 0
	case ValStr:
		switch {
		case a.strVal < b.strVal:
			return -1
		case a.strVal > b.strVal:
			return 1
		}
		return 0
	}
	return 0
}

// sortedEntries returns the map entries sorted by ascending key.
// The value's own entry slice is left untouched.
func sortedEntries(entries []MapEntry) []MapEntry {
	sorted := make([]MapEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareKeys(sorted[i].Key, sorted[j].Key) < 0
	})
	return sorted
}
