package noise

import "testing"

func TestFieldsInRangeAndDeterministic(t *testing.T) {
	for _, kind := range []Kind{KindSimplex, KindPerlin} {
		a, err := New(kind, 99)
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		b, _ := New(kind, 99)
		for z := 0.0; z < 300; z += 17.3 {
			for x := 0.0; x < 300; x += 11.9 {
				sa := a.Sample(x, z)
				sb := b.Sample(x, z)
				if sa != sb {
					t.Fatalf("%s: sample at (%.1f,%.1f) not deterministic", kind, x, z)
				}
				for c, v := range sa {
					if v < 0 || v > 1 {
						t.Fatalf("%s: channel %d at (%.1f,%.1f) = %f, out of [0,1]", kind, c, x, z, v)
					}
				}
			}
		}
	}
}

func TestChannelsDiffer(t *testing.T) {
	f := NewSimplexField(5)
	same := 0
	total := 0
	for x := 0.0; x < 200; x += 13.7 {
		s := f.Sample(x, x*0.5)
		total++
		if s[0] == s[1] {
			same++
		}
	}
	if same == total {
		t.Fatal("channels should be independently seeded")
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := New("worley", 1); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
