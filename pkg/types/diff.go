package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Flatten marshals v to JSON and returns its leaves keyed by dotted path.
// Arrays are leaves; nested objects are walked.
func Flatten(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("flatten: marshal: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("flatten: unmarshal: %w", err)
	}
	out := map[string]any{}
	flattenInto(out, "", decoded)
	return out, nil
}

func flattenInto(out map[string]any, prefix string, value any) {
	obj, ok := value.(map[string]any)
	if !ok || (len(obj) == 0 && prefix != "") {
		out[prefix] = value
		return
	}
	for key, child := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		flattenInto(out, path, child)
	}
}

// Diff compares two values over their flattened JSON form. Paths listed in
// ignore, and anything beneath them, are skipped.
func Diff(before, after any, ignore ...string) (ChangeSet, error) {
	left, err := Flatten(before)
	if err != nil {
		return nil, err
	}
	right, err := Flatten(after)
	if err != nil {
		return nil, err
	}

	changes := ChangeSet{}
	for _, path := range unionKeys(left, right) {
		if ignored(path, ignore) {
			continue
		}
		from, to := left[path], right[path]
		if reflect.DeepEqual(from, to) {
			continue
		}
		changes[path] = FieldChange{From: from, To: to}
	}
	return changes, nil
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ignored(path string, ignore []string) bool {
	for _, prefix := range ignore {
		if path == prefix || (len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '.') {
			return true
		}
	}
	return false
}
