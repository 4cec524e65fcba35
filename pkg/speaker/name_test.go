package speaker

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		fragment string
		want     Parsed
	}{
		{"Mr. SMITH of Ohio", Parsed{Name: "smith", State: "ohio", LastName: "smith"}},
		{"Mr. SMITH", Parsed{Name: "smith", LastName: "smith"}},
		{"Ms. JACKSON LEE of Texas", Parsed{Name: "jackson lee", State: "texas", FirstName: "jackson", LastName: "lee"}},
		{"Ms. JACKSON LEE", Parsed{Name: "jackson lee", FirstName: "jackson", LastName: "lee"}},
		{"Mr. JOHN PAUL JONES", Parsed{Name: "john paul jones", FirstName: "john", LastName: "jones"}},
		{"Mrs. RODGERS of Washington.", Parsed{Name: "rodgers", State: "washington", LastName: "rodgers"}},
		{"Mr. SMITH of New York", Parsed{Name: "smith", State: "new york", LastName: "smith"}},
		{"Ms. BARRAGÁN", Parsed{Name: "barragan", LastName: "barragan"}},
		{"Miss GONZÁLEZ-COLÓN", Parsed{Name: "gonzalez-colon", LastName: "gonzalez-colon"}},
	}
	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			got, ok := Parse(tt.fragment)
			if !ok {
				t.Fatalf("Parse(%q) not ok", tt.fragment)
			}
			tt.want.Raw = tt.fragment
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.fragment, got, tt.want)
			}
		})
	}
}

func TestParse_Skip(t *testing.T) {
	for _, fragment := range []string{"", "Mr.", "  ", "Mrs. of Ohio"} {
		if p, ok := Parse(fragment); ok {
			t.Errorf("Parse(%q) = %+v, want skip", fragment, p)
		}
	}
}

func TestParser_ModeNone(t *testing.T) {
	p := NewParser("none")
	got, ok := p.Parse("Mr. SMITH of Ohio")
	if !ok {
		t.Fatal("not ok")
	}
	// Title matching is lowercase, so it survives as the first name.
	if got.FirstName != "Mr" || got.LastName != "SMITH" || got.State != "Ohio" {
		t.Errorf("got %+v", got)
	}
}

func TestParsed_Flags(t *testing.T) {
	p, _ := Parse("Mr. SMITH of Ohio")
	if !p.HasState() || p.HasFirstName() {
		t.Errorf("flags wrong for %+v", p)
	}
}
