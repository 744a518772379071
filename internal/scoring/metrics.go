package scoring

// Metrics is the free-form payload submitted with an activity. Values are
// interpreted by the activity type's scoring config; unknown keys are kept
// for audit but never scored.
type Metrics map[string]interface{}

// Value returns the numeric value for a metric key, 0 if absent or not a
// number. JSON decoding yields float64 for all numbers, but callers may also
// construct Metrics in Go code with int values.
func (m Metrics) Value(key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// SelectedBonuses lists the optional bonus names the user picked for a
// completion-type activity.
func (m Metrics) SelectedBonuses() []string {
	var names []string
	switch v := m["selected_bonuses"].(type) {
	case []string:
		names = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
	}
	return names
}

// HasMedia reports whether the activity carries a photo, which makes it
// eligible for the once-per-day media bonus.
func (m Metrics) HasMedia() bool {
	if url, ok := m["photo_url"].(string); ok && url != "" {
		return true
	}
	if b, ok := m["has_media"].(bool); ok {
		return b
	}
	return false
}
