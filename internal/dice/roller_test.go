package dice

import "testing"

func TestFateInvariants(t *testing.T) {
	for i := 0; i < 500; i++ {
		r := Fate(2, "")
		if len(r.Dice) != 4 {
			t.Fatalf("expected 4 fate dice, got %d", len(r.Dice))
		}
		for _, d := range r.Dice {
			if d < -1 || d > 1 {
				t.Fatalf("fate die out of range: %d", d)
			}
		}
		if r.Total != sum(r.Dice)+r.Modifier {
			t.Fatalf("total mismatch: %+v", r)
		}
		if r.BonusDie != nil {
			t.Fatalf("fate roll must not carry a bonus die")
		}
	}
}

func TestFateCoversAllFaces(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 2000 && len(seen) < 3; i++ {
		for _, d := range Fate(0, "").Dice {
			seen[d] = true
		}
	}
	for _, face := range []int{-1, 0, 1} {
		if !seen[face] {
			t.Fatalf("face %d never drawn in 2000 rolls", face)
		}
	}
}

func TestAdvantageInvariants(t *testing.T) {
	for i := 0; i < 500; i++ {
		r := Advantage(-1, "")
		if len(r.Dice) != 3 {
			t.Fatalf("expected 3 fate dice, got %d", len(r.Dice))
		}
		if r.BonusDie == nil {
			t.Fatalf("advantage roll must carry a bonus die")
		}
		if *r.BonusDie < 1 || *r.BonusDie > 6 {
			t.Fatalf("bonus die out of range: %d", *r.BonusDie)
		}
		if r.Total != sum(r.Dice)+*r.BonusDie+r.Modifier {
			t.Fatalf("total mismatch: %+v", r)
		}
	}
}

func TestRollInvariants(t *testing.T) {
	cases := []struct {
		sides, count int
		want         Type
	}{
		{4, 1, TypeD4},
		{6, 2, TypeD6},
		{8, 1, TypeD8},
		{10, 3, TypeD10},
		{12, 1, TypeD12},
		{20, 5, TypeD20},
	}

	for _, tc := range cases {
		for i := 0; i < 200; i++ {
			r, err := Roll(tc.sides, tc.count, 3, "")
			if err != nil {
				t.Fatalf("roll %dd%d: %v", tc.count, tc.sides, err)
			}
			if r.Type != tc.want {
				t.Fatalf("expected type %s, got %s", tc.want, r.Type)
			}
			if len(r.Dice) != tc.count {
				t.Fatalf("expected %d dice, got %d", tc.count, len(r.Dice))
			}
			for _, d := range r.Dice {
				if d < 1 || d > tc.sides {
					t.Fatalf("d%d draw out of range: %d", tc.sides, d)
				}
			}
			if r.Total != sum(r.Dice)+r.Modifier {
				t.Fatalf("total mismatch: %+v", r)
			}
		}
	}
}

func TestRollRejectsUnsupportedDice(t *testing.T) {
	if _, err := Roll(7, 1, 0, ""); err == nil {
		t.Fatal("expected error for d7")
	}
	if _, err := Roll(6, 0, 0, ""); err == nil {
		t.Fatal("expected error for zero dice")
	}
}

func TestDefaultDescription(t *testing.T) {
	if got := Fate(0, "").DefaultDescription(); got != "4dF" {
		t.Fatalf("fate description: %q", got)
	}
	if got := Advantage(0, "").DefaultDescription(); got != "3dF + 1d6 (Vantagem)" {
		t.Fatalf("advantage description: %q", got)
	}
	r, err := Roll(6, 2, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.DefaultDescription(); got != "2d6" {
		t.Fatalf("conventional description: %q", got)
	}
}
