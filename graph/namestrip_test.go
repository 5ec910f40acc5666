package graph

import "testing"

func TestStripName(t *testing.T) {
	tests := []struct {
		name         string
		wantStripped string
		wantChanged  bool
	}{
		{"foo::bar(int, char*)", "foo::bar", true},
		{"foo::bar(int, char*) const", "foo::bar", true},
		{"plain_c_function", "plain_c_function", false},
		{"", "", false},
		{"()", "", true},
	}
	for _, tt := range tests {
		gotStripped, gotChanged := stripName(tt.name)
		if gotStripped != tt.wantStripped || gotChanged != tt.wantChanged {
			t.Errorf("stripName(%q) = (%q, %v), want (%q, %v)",
				tt.name, gotStripped, gotChanged, tt.wantStripped, tt.wantChanged)
		}
	}
}
