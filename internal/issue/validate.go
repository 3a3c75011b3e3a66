package issue

import (
	"fmt"
	"sort"
)

var identifierKeys = map[string]bool{
	"frame":           true,
	"sensor":          true,
	"object":          true,
	"object_type":     true,
	"annotation":      true,
	"annotation_type": true,
	"attribute":       true,
}

// ValidateSerialized returns field-level error messages for an export record.
// Records decoded from JSON carry float64 frames; whole numbers are accepted.
func ValidateSerialized(s Serialized) []string {
	var errs []string
	t, err := ParseType(s.Type)
	if err != nil {
		errs = append(errs, fmt.Sprintf("type %q is not valid", s.Type))
	}
	if s.Reason == "" {
		errs = append(errs, "reason is required")
	}

	switch ids := s.Identifiers.(type) {
	case string:
		if err == nil && t != TypeSchema {
			errs = append(errs, fmt.Sprintf("identifiers: bare string only allowed for %s", TypeSchema))
		}
	case map[string]any:
		keys := make([]string, 0, len(ids))
		for k := range ids {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !identifierKeys[k] {
				errs = append(errs, fmt.Sprintf("identifiers.%s is not a known field", k))
				continue
			}
			errs = append(errs, validateIdentifier(k, ids[k])...)
		}
	default:
		errs = append(errs, "identifiers must be an object or a string")
	}
	return errs
}

func validateIdentifier(key string, v any) []string {
	if key == "frame" {
		switch f := v.(type) {
		case int:
			return nil
		case float64:
			if f == float64(int64(f)) {
				return nil
			}
		}
		return []string{"identifiers.frame must be an integer"}
	}
	if _, ok := v.(string); !ok {
		return []string{fmt.Sprintf("identifiers.%s must be a string", key)}
	}
	return nil
}
