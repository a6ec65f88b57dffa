package appointments

import "testing"

func TestParseTitle_LocationAndVisitType(t *testing.T) {
	cases := []struct {
		title    string
		location string
		visit    VisitType
	}{
		{"[COL-E] Jane Doe", "COL", VisitEval},
		{"[NYC-DE] John Roe", "NYC", VisitDAEval},
		{"[CHS-D] Sam Poe", "CHS", VisitDA},
		{"[COLUMBIA-E] Jane Doe", "COL", VisitEval},
	}

	for _, tc := range cases {
		location, visit := ParseTitle(tc.title)
		if location == nil || *location != tc.location {
			t.Fatalf("%q: expected location %s, got %v", tc.title, tc.location, location)
		}
		if visit == nil || *visit != tc.visit {
			t.Fatalf("%q: expected visit type %s, got %v", tc.title, tc.visit, visit)
		}
	}
}

func TestParseTitle_VirtualTagIsDAWithoutLocation(t *testing.T) {
	location, visit := ParseTitle("Jane Doe [V]")

	if location != nil {
		t.Fatalf("expected no location for virtual visit, got %s", *location)
	}
	if visit == nil || *visit != VisitDA {
		t.Fatalf("expected DA for virtual visit, got %v", visit)
	}
}

func TestParseTitle_UnknownVisitCodeKeepsLocation(t *testing.T) {
	location, visit := ParseTitle("[COL-X] Jane Doe")

	if location == nil || *location != "COL" {
		t.Fatalf("expected location COL, got %v", location)
	}
	if visit != nil {
		t.Fatalf("expected no visit type for unknown code, got %s", *visit)
	}
}

func TestParseTitle_UnrecognizedTitleYieldsNothing(t *testing.T) {
	location, visit := ParseTitle("Jane Doe follow-up")

	if location != nil || visit != nil {
		t.Fatalf("expected nothing for untagged title, got %v / %v", location, visit)
	}
}
