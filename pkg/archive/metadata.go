package archive

import (
	"time"
)

// Metadata is the archive's free-form key/value document.
//
// No field is guaranteed to be present; accessors report presence
// explicitly and callers must check before use. Values are the JSON
// scalar/array types produced by encoding/json.
type Metadata map[string]any

// String returns the string value for key, reporting whether the key is
// present and holds a string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Version returns the archive's declared semantic version string, if any.
func (m Metadata) Version() (string, bool) {
	return m.String("version")
}

// metadata writers disagree on the provenance timestamp key; accept the
// variants seen in the wild.
var buildTimeKeys = []string{"buildtime", "planetiler:buildtime", "generated"}

// BuildTime returns the archive's provenance/build timestamp, if a
// recognized field is present and parses as RFC 3339.
func (m Metadata) BuildTime() (time.Time, bool) {
	for _, key := range buildTimeKeys {
		s, ok := m.String(key)
		if !ok {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Name returns the archive's display name, if declared.
func (m Metadata) Name() (string, bool) {
	return m.String("name")
}
