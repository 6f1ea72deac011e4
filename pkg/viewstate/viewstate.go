// Package viewstate encodes the user-controllable view parameters in a
// shareable URL fragment.
//
// The fragment is a human-editable "key=value&key=value" string. The
// codec is lossless and polite: encoding merges into whatever pairs
// already exist — keys written by other concerns survive untouched, in
// their original order — and fields holding their default value are
// omitted entirely, so re-encoding never accumulates stale keys.
// Decoding ignores unknown keys, which keeps fragments portable across
// viewer versions in both directions.
//
// Round-trip law: Decode(Encode(f, Decode(f))) == Decode(f) for any
// well-formed fragment f.
package viewstate

import (
	"net/url"
	"strings"
)

// DroppedSource is the wire sentinel written when a user-dropped local
// archive is the active source. It is distinct from an absent source
// (use the default) and from any URL.
const DroppedSource = "dropped"

// DefaultTheme is the theme applied when the fragment names none.
const DefaultTheme = "light"

// Recognized fragment keys.
const (
	keyTheme        = "theme"
	keyLang         = "lang"
	keySource       = "source"
	keyLocalSprites = "localsprites"
	keyDebug        = "debug"
	keyStyleVersion = "styleversion"
)

// canonical write order for keys this codec owns.
var knownKeys = []string{keyTheme, keyLang, keySource, keyLocalSprites, keyDebug, keyStyleVersion}

// State is the set of user-controllable view parameters.
//
// Source is either empty (absent — use the resolver's default),
// [DroppedSource] (a local archive is active), or a tile source URL.
// The three are mutually exclusive.
type State struct {
	Theme        string
	Lang         string
	Source       string
	LocalSprites bool
	Debug        bool
	StyleVersion string
}

// Default returns the state all fields fall back to.
func Default() State {
	return State{Theme: DefaultTheme}
}

// Dropped reports whether a user-dropped local archive is the active source.
func (s State) Dropped() bool { return s.Source == DroppedSource }

// Decode parses a fragment into a State. A leading "#" is accepted.
// Unknown keys and malformed pairs are ignored; affected fields keep
// their defaults.
func Decode(fragment string) State {
	s := Default()
	for _, p := range parsePairs(fragment) {
		v, err := url.QueryUnescape(p.value)
		if err != nil {
			continue
		}
		switch p.key {
		case keyTheme:
			s.Theme = v
		case keyLang:
			s.Lang = v
		case keySource:
			s.Source = v
		case keyLocalSprites:
			s.LocalSprites = truthy(v)
		case keyDebug:
			s.Debug = truthy(v)
		case keyStyleVersion:
			s.StyleVersion = v
		}
	}
	return s
}

// Encode merges s into existingFragment and returns the new fragment.
//
// Pairs owned by other concerns keep their position and spelling.
// Fields equal to their default are removed rather than written; fields
// differing from the default update an existing pair in place or append
// in canonical key order.
func Encode(existingFragment string, s State) string {
	pairs := parsePairs(existingFragment)
	def := Default()

	want := map[string]*string{}
	set := func(key, value string) { want[key] = &value }
	if s.Theme != def.Theme {
		set(keyTheme, s.Theme)
	}
	if s.Lang != def.Lang {
		set(keyLang, s.Lang)
	}
	if s.Source != def.Source {
		set(keySource, s.Source)
	}
	if s.LocalSprites != def.LocalSprites {
		set(keyLocalSprites, "1")
	}
	if s.Debug != def.Debug {
		set(keyDebug, "1")
	}
	if s.StyleVersion != def.StyleVersion {
		set(keyStyleVersion, s.StyleVersion)
	}

	// Update or drop pairs we own, preserving everything else verbatim.
	out := pairs[:0]
	for _, p := range pairs {
		if !owned(p.key) {
			out = append(out, p)
			continue
		}
		if v, ok := want[p.key]; ok {
			out = append(out, pair{key: p.key, value: url.QueryEscape(*v), hasEq: true})
			delete(want, p.key)
		}
		// default-valued: pair dropped
	}
	for _, key := range knownKeys {
		if v, ok := want[key]; ok {
			out = append(out, pair{key: key, value: url.QueryEscape(*v), hasEq: true})
		}
	}
	return formatPairs(out)
}

func owned(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

func truthy(v string) bool {
	return v == "1" || v == "true" || v == "yes"
}

// pair is one fragment segment. hasEq distinguishes "key=" from a bare
// "key" flag so foreign segments re-serialize byte-identically.
type pair struct {
	key   string
	value string
	hasEq bool
}

func parsePairs(fragment string) []pair {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return nil
	}
	var pairs []pair
	for _, seg := range strings.Split(fragment, "&") {
		if seg == "" {
			continue
		}
		key, value, hasEq := strings.Cut(seg, "=")
		pairs = append(pairs, pair{key: key, value: value, hasEq: hasEq})
	}
	return pairs
}

func formatPairs(pairs []pair) string {
	segs := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.hasEq {
			segs = append(segs, p.key+"="+p.value)
		} else {
			segs = append(segs, p.key)
		}
	}
	return strings.Join(segs, "&")
}
