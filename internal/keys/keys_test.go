package keys

import "testing"

func TestBuildAllCombinations(t *testing.T) {
	tests := []struct {
		name string
		a, b bool
		want []Code
	}{
		{"both released", false, false, []Code{}},
		{"A only", true, false, []Code{CodeLeftArrow}},
		{"B only", false, true, []Code{CodeRightArrow}},
		{"both pressed", true, true, []Code{CodeLeftArrow, CodeRightArrow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Build(tt.a, tt.b, CodeLeftArrow, CodeRightArrow)

			asserted := 0
			if tt.a {
				asserted++
			}
			if tt.b {
				asserted++
			}
			if r.Count() != asserted {
				t.Errorf("count: got %d, want %d", r.Count(), asserted)
			}

			got := r.Codes()
			if len(got) != len(tt.want) {
				t.Fatalf("codes: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("code %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
			if r.Modifiers != 0 {
				t.Errorf("modifiers: got 0x%02X, want 0", r.Modifiers)
			}
		})
	}
}

func TestBuildScanOrderIndependentOfCodeValue(t *testing.T) {
	// Line A's code precedes line B's even when it sorts higher.
	r := Build(true, true, CodeZ, CodeA)
	got := r.Codes()
	if got[0] != CodeZ || got[1] != CodeA {
		t.Errorf("expected [Z A], got %v", got)
	}
}

func TestReportAddBounds(t *testing.T) {
	var r Report
	if !r.Add(CodeA) {
		t.Fatal("first add should succeed")
	}
	if !r.Add(CodeB) {
		t.Fatal("second add should succeed")
	}
	if r.Add(CodeC) {
		t.Error("add beyond MaxKeys should fail")
	}
	if r.Count() != MaxKeys {
		t.Errorf("count: got %d, want %d", r.Count(), MaxKeys)
	}
}

func TestReportAddRejectsNone(t *testing.T) {
	var r Report
	if r.Add(CodeNone) {
		t.Error("CodeNone should be rejected")
	}
	if r.Count() != 0 {
		t.Errorf("count: got %d, want 0", r.Count())
	}
}

func TestReportCodesIsCopy(t *testing.T) {
	r := Build(true, false, CodeLeftArrow, CodeRightArrow)
	codes := r.Codes()
	codes[0] = CodeQ
	if r.Codes()[0] != CodeLeftArrow {
		t.Error("mutating Codes() result changed the report")
	}
}

func TestReportEqual(t *testing.T) {
	a := Build(true, true, CodeLeftArrow, CodeRightArrow)
	b := Build(true, true, CodeLeftArrow, CodeRightArrow)
	if !a.Equal(b) {
		t.Error("identical reports should be equal")
	}

	c := Build(true, false, CodeLeftArrow, CodeRightArrow)
	if a.Equal(c) {
		t.Error("different counts should not be equal")
	}

	swapped := Build(true, true, CodeRightArrow, CodeLeftArrow)
	if a.Equal(swapped) {
		t.Error("order matters for equality")
	}

	var empty1, empty2 Report
	if !empty1.Equal(empty2) {
		t.Error("empty reports should be equal")
	}
}

func TestReportContains(t *testing.T) {
	r := Build(false, true, CodeLeftArrow, CodeRightArrow)
	if r.Contains(CodeLeftArrow) {
		t.Error("should not contain LEFT_ARROW")
	}
	if !r.Contains(CodeRightArrow) {
		t.Error("should contain RIGHT_ARROW")
	}
}

func TestReportString(t *testing.T) {
	r := Build(true, true, CodeLeftArrow, CodeRightArrow)
	if got := r.String(); got != "[LEFT_ARROW RIGHT_ARROW]" {
		t.Errorf("got %q", got)
	}
	var empty Report
	if got := empty.String(); got != "[]" {
		t.Errorf("empty: got %q", got)
	}
}

func TestCodeValues(t *testing.T) {
	// USB HID Usage Tables, Keyboard/Keypad page.
	want := map[Code]uint8{
		CodeA:          0x04,
		CodeZ:          0x1D,
		Code1:          0x1E,
		Code0:          0x27,
		CodeEnter:      0x28,
		CodeF1:         0x3A,
		CodeF12:        0x45,
		CodeRightArrow: 0x4F,
		CodeLeftArrow:  0x50,
		CodeDownArrow:  0x51,
		CodeUpArrow:    0x52,
	}
	for c, v := range want {
		if uint8(c) != v {
			t.Errorf("%s: got 0x%02X, want 0x%02X", c, uint8(c), v)
		}
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		in   string
		want Code
	}{
		{"LEFT_ARROW", CodeLeftArrow},
		{"right_arrow", CodeRightArrow},
		{" up_arrow ", CodeUpArrow},
		{"a", CodeA},
		{"Z", CodeZ},
		{"0", Code0},
		{"7", Code7},
		{"F5", CodeF5},
		{"f12", CodeF12},
		{"SPACE", CodeSpace},
		{"0x50", CodeLeftArrow},
		{"0x65", Code(0x65)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCode(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseCodeErrors(t *testing.T) {
	for _, in := range []string{"", "NOPE", "0x00", "0x1", "F13"} {
		if _, err := ParseCode(in); err == nil {
			t.Errorf("ParseCode(%q): expected error", in)
		}
	}
}

func TestCodeStringRoundTrip(t *testing.T) {
	for c := range names {
		got, err := ParseCode(c.String())
		if err != nil {
			t.Errorf("%s: %v", c, err)
			continue
		}
		if got != c {
			t.Errorf("%s: round trip gave %s", c, got)
		}
	}
}

func TestCodeStringUnnamed(t *testing.T) {
	if got := Code(0x65).String(); got != "0x65" {
		t.Errorf("got %q, want 0x65", got)
	}
}
