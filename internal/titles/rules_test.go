package titles

import "testing"

func TestApplyPriorityMarker(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		flag        string
		want        string
		wantChanged bool
	}{
		{"yes adds marker", "Fix bug", PriorityYes, "♨️ Fix bug", true},
		{"yes with marker unchanged", "♨️ Fix bug", PriorityYes, "♨️ Fix bug", false},
		{"no removes marker", "♨️ Fix bug", PriorityNo, "Fix bug", true},
		{"no without marker unchanged", "Fix bug", PriorityNo, "Fix bug", false},
		{"unknown flag unchanged", "Fix bug", "42", "Fix bug", false},
		{"empty flag unchanged", "♨️ Fix bug", "", "♨️ Fix bug", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := ApplyPriorityMarker(tc.title, tc.flag)
			if got != tc.want || changed != tc.wantChanged {
				t.Fatalf("ApplyPriorityMarker(%q, %q) = (%q, %v), want (%q, %v)",
					tc.title, tc.flag, got, changed, tc.want, tc.wantChanged)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		once, _ := ApplyPriorityMarker("Fix bug", PriorityYes)
		twice, changed := ApplyPriorityMarker(once, PriorityYes)
		if changed || twice != once {
			t.Fatalf("second application changed title: %q -> %q", once, twice)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		original := "Fix bug"
		marked, _ := ApplyPriorityMarker(original, PriorityYes)
		restored, _ := ApplyPriorityMarker(marked, PriorityNo)
		if restored != original {
			t.Fatalf("round trip mangled title: %q -> %q -> %q", original, marked, restored)
		}
	})
}

func TestSequential(t *testing.T) {
	if got := Sequential("APP", 1); got != "APP 1" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := Sequential("XYZ", 42); got != "XYZ 42" {
		t.Fatalf("unexpected title: %q", got)
	}
}
