package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"1.0", Version{Major: 1, Minor: 0}, false},
		{"2.15", Version{Major: 2, Minor: 15}, false},
		{"0.1", Version{Major: 0, Minor: 1}, false},
		{"1", Version{}, true},
		{"1.0.0", Version{}, true},
		{"", Version{}, true},
		{"a.b", Version{}, true},
		{"1.", Version{}, true},
		{".0", Version{}, true},
		{"-1.0", Version{}, true},
		{"70000.0", Version{}, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) error = nil, want error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	v := Version{Major: 1, Minor: 2}
	if got := v.String(); got != "1.2" {
		t.Errorf("String() = %q, want %q", got, "1.2")
	}
}

func TestCompatible(t *testing.T) {
	v10 := Version{Major: 1, Minor: 0}
	v13 := Version{Major: 1, Minor: 3}
	v20 := Version{Major: 2, Minor: 0}

	if !v10.Compatible(v13) {
		t.Error("1.0 should be compatible with 1.3")
	}
	if v10.Compatible(v20) {
		t.Error("1.0 should not be compatible with 2.0")
	}
}

func TestCurrentParses(t *testing.T) {
	if _, err := Parse(Current); err != nil {
		t.Fatalf("Current %q does not parse: %v", Current, err)
	}
}

func TestTXTValue(t *testing.T) {
	if got := TXTValue(); got != "1" {
		t.Errorf("TXTValue() = %q, want %q", got, "1")
	}
}

func TestCompatibleTXT(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"", true},
		{"2", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if got := CompatibleTXT(tt.value); got != tt.want {
			t.Errorf("CompatibleTXT(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
