package compat

import (
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	table := Table{2: {2, 3}, 3: {3}}

	tests := []struct {
		name           string
		styleMajor     int
		tilesetVersion string
		wantCompatible bool
	}{
		{"v3 style cannot render legacy tileset", 3, "2.0.1", false},
		{"v2 style renders its own schema", 2, "2.0.1", true},
		{"unknown tileset major assumed forward-compatible", 2, "9.0.0", true},
		{"v3 style renders v3 tileset", 3, "3.7.1", true},
		{"v2 style renders v3 tileset", 2, "3.0.0", true},
		{"bare major", 3, "3", true},
		{"v prefix", 3, "v2.1", false},
		{"unparseable version", 3, "latest", true},
		{"empty version", 3, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Check(tt.styleMajor, tt.tilesetVersion)
			if got.Compatible != tt.wantCompatible {
				t.Errorf("Check(%d, %q).Compatible = %v, want %v",
					tt.styleMajor, tt.tilesetVersion, got.Compatible, tt.wantCompatible)
			}
			if got.Compatible && got.Message != "" {
				t.Errorf("compatible result carries message %q", got.Message)
			}
			if !got.Compatible && got.Message == "" {
				t.Error("incompatible result carries no message")
			}
		})
	}
}

func TestCheck_MessageNamesBothVersions(t *testing.T) {
	table := Table{2: {2, 3}, 3: {3}}

	got := table.Check(3, "2.0.1")
	if got.Compatible {
		t.Fatal("Check(3, 2.0.1) = compatible, want mismatch")
	}
	for _, fragment := range []string{"v3", "v2", "2.0.1", ReferenceURL} {
		if !strings.Contains(got.Message, fragment) {
			t.Errorf("message %q missing %q", got.Message, fragment)
		}
	}
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"3.5.0", 3, true},
		{"2-beta", 2, true},
		{"10.0", 10, true},
		{"3", 3, true},
		{"v4.2", 4, true},
		{" 3.1 ", 3, true},
		{"", 0, false},
		{"latest", 0, false},
		{".5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseMajor(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseMajor(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDefaultTable(t *testing.T) {
	if got := Check(3, "2.0.1"); got.Compatible {
		t.Error("default table: v3 style accepted a v2 tileset")
	}
	if got := Check(2, "3.1.0"); !got.Compatible {
		t.Errorf("default table: v2 style rejected a v3 tileset: %s", got.Message)
	}
}
