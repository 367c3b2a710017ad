package geo

import "testing"

func TestParsePointRoundTrip(t *testing.T) {
	p, err := ParsePoint("40.71280000", "-74.00600000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.StoreLat() != "40.71280000" || p.StoreLon() != "-74.00600000" {
		t.Fatalf("unexpected storage form: %s %s", p.StoreLat(), p.StoreLon())
	}
	if p.DisplayLat() != "40.7128" || p.DisplayLon() != "-74.0060" {
		t.Fatalf("unexpected display form: %s %s", p.DisplayLat(), p.DisplayLon())
	}
}

func TestParsePointPadsShortInputs(t *testing.T) {
	p, err := ParsePoint("40.7", "-74")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.StoreLat() != "40.70000000" || p.StoreLon() != "-74.00000000" {
		t.Fatalf("unexpected storage form: %s %s", p.StoreLat(), p.StoreLon())
	}
}

func TestParsePointRejects(t *testing.T) {
	cases := [][2]string{
		{"", "-74.0060"},
		{"40.7128", ""},
		{"not-a-number", "-74.0060"},
		{"40.712800001", "-74.0060"},  // 9 fractional digits
		{"91.0", "-74.0060"},          // latitude out of range
		{"40.7128", "-180.00000001"},  // longitude out of range
	}
	for _, c := range cases {
		if _, err := ParsePoint(c[0], c[1]); err == nil {
			t.Fatalf("expected error for %q,%q", c[0], c[1])
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Display("40.71280000"); got != "40.7128" {
		t.Fatalf("unexpected display: %s", got)
	}
	if got := Display("-74.00604999"); got != "-74.0060" {
		t.Fatalf("unexpected rounding: %s", got)
	}
	if got := Display("garbage"); got != "garbage" {
		t.Fatalf("expected passthrough, got %s", got)
	}
}

func TestMapLink(t *testing.T) {
	link := MapLink("40.71280000", "-74.00600000")
	if link != "https://maps.google.com/?q=40.7128,-74.0060" {
		t.Fatalf("unexpected link: %s", link)
	}
}
