package featureid

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  uint64
		want ID
	}{
		{"untagged zero", 0, ID{None, 0}},
		{"untagged keeps raw value", 123456, ID{None, 123456}},
		{"node", 1<<44 | 42, ID{Node, 42}},
		{"way", 2<<44 | 42, ID{Way, 42}},
		{"relation", 3<<44 | 42, ID{Relation, 42}},
		{"max local id", 1<<44 | (1<<44 - 1), ID{Node, 1<<44 - 1}},
		{"high unused bits ignored on decode", 1<<60 | 2<<44 | 7, ID{Way, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.raw); got != tt.want {
				t.Errorf("Decode(%#x) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	for _, kind := range []Kind{Node, Way, Relation} {
		raw, err := Encode(kind, 987654321)
		if err != nil {
			t.Fatalf("Encode(%v) failed: %v", kind, err)
		}
		if got := Decode(raw); got.Kind != kind || got.Local != 987654321 {
			t.Errorf("Decode(Encode(%v, 987654321)) = %+v", kind, got)
		}
	}

	// Untagged ids pass through unchanged.
	raw, err := Encode(None, 555)
	if err != nil || raw != 555 {
		t.Errorf("Encode(None, 555) = (%d, %v)", raw, err)
	}

	if _, err := Encode(Node, 1<<44); err == nil {
		t.Error("Encode accepted a 45-bit local id")
	}
}

func TestKindString(t *testing.T) {
	want := map[Kind]string{None: "none", Node: "node", Way: "way", Relation: "relation"}
	for kind, name := range want {
		if kind.String() != name {
			t.Errorf("%d.String() = %q, want %q", kind, kind.String(), name)
		}
	}
}
