package galaxy

import "testing"

func TestCoordinateString(t *testing.T) {
	c := Coordinate{Galaxy: 1, System: 120, Position: 8, Type: TypePlanet}
	if got, want := c.String(), "[1:120:8:planet]"; got != want {
		t.Fatalf("coordinate string mismatch: got=%s want=%s", got, want)
	}
	if got, want := c.WithType(TypeMoon).String(), "[1:120:8:moon]"; got != want {
		t.Fatalf("moon string mismatch: got=%s want=%s", got, want)
	}
}

func TestCoordinateLess_TotalOrder(t *testing.T) {
	ordered := []Coordinate{
		{Galaxy: 1, System: 1, Position: 1, Type: TypePlanet},
		{Galaxy: 1, System: 1, Position: 1, Type: TypeMoon},
		{Galaxy: 1, System: 1, Position: 2, Type: TypePlanet},
		{Galaxy: 1, System: 2, Position: 1, Type: TypePlanet},
		{Galaxy: 2, System: 1, Position: 1, Type: TypePlanet},
	}
	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].Less(ordered[i+1]) {
			t.Fatalf("expected %s < %s", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Less(ordered[i]) {
			t.Fatalf("order not antisymmetric between %s and %s", ordered[i], ordered[i+1])
		}
	}
	c := ordered[0]
	if c.Less(c) {
		t.Fatalf("coordinate compares less than itself")
	}
}

func TestIsDeepSpace(t *testing.T) {
	if (Coordinate{Galaxy: 1, System: 5, Position: 8}).IsDeepSpace() {
		t.Fatalf("position 8 reported as deep space")
	}
	if !(Coordinate{Galaxy: 1, System: 5, Position: DeepSpacePosition}).IsDeepSpace() {
		t.Fatalf("position 16 not reported as deep space")
	}
}
