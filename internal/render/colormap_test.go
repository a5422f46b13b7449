package render

import "testing"

func TestLookupColormap(t *testing.T) {
	for _, name := range ColormapNames() {
		if _, err := LookupColormap(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	if _, err := LookupColormap("Viridis"); err != nil {
		t.Errorf("lookup should be case-insensitive: %v", err)
	}

	if _, err := LookupColormap("jet2000"); err == nil {
		t.Error("unknown colormap accepted")
	}
}

func TestColormapEndpoints(t *testing.T) {
	cm, err := LookupColormap("greys")
	if err != nil {
		t.Fatal(err)
	}

	if c := cm.At(0); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("At(0): want white, got %v", c)
	}
	if c := cm.At(1); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("At(1): want black, got %v", c)
	}

	// Out-of-range values clamp to the endpoints; fixed color bounds mean
	// field values routinely exceed them.
	if cm.At(-3) != cm.At(0) {
		t.Error("At(-3) should clamp to At(0)")
	}
	if cm.At(7) != cm.At(1) {
		t.Error("At(7) should clamp to At(1)")
	}
}
