package fonts

import "testing"

func TestLoadDefaults(t *testing.T) {
	if err := LoadDefaults(14); err != nil {
		t.Fatal(err)
	}
	for _, name := range []FontName{Regular, Small, Title} {
		if name.Get() == nil {
			t.Errorf("%s: nil face", name)
		}
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if err := LoadFontWithSize("broken", []byte("not a font"), 10); err == nil {
		t.Error("expected parse error")
	}
}
