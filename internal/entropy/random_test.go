package entropy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStreamDeterministic(t *testing.T) {
	a := NewStream(7)
	b := NewStream(7)
	for i := 0; i < 100; i++ {
		if a.Value() != b.Value() {
			t.Fatalf("draw %d differs", i)
		}
		if a.Range(-3, 9) != b.Range(-3, 9) {
			t.Fatalf("range draw %d differs", i)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	s := NewStream(1)
	for i := 0; i < 1000; i++ {
		v := s.Range(2, 5)
		if v < 2 || v >= 5 {
			t.Fatalf("Range(2,5) = %d", v)
		}
	}
	if got := s.Range(4, 4); got != 4 {
		t.Fatalf("empty range = %d, want 4", got)
	}
	if got := s.Range(6, 1); got != 6 {
		t.Fatalf("inverted range = %d, want 6", got)
	}
}

func TestCryptoSeedNonNegative(t *testing.T) {
	for i := 0; i < 50; i++ {
		if seed := (CryptoSource{}).Seed(); seed < 0 || seed > 1<<31-1 {
			t.Fatalf("seed out of range: %d", seed)
		}
	}
}

type fixedSource int64

func (f fixedSource) Seed() int64 { return int64(f) }

func TestFreshSeed(t *testing.T) {
	if got := FreshSeed(fixedSource(99)); got != 99 {
		t.Fatalf("FreshSeed = %d, want 99", got)
	}
	if got := FreshSeed(nil); got < 0 {
		t.Fatalf("FreshSeed(nil) = %d", got)
	}
	var off *RandomOrgSource
	if got := FreshSeed(off); got < 0 {
		t.Fatalf("nil random.org source = %d", got)
	}
}

func TestRandomOrgSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method != "generateIntegers" {
			t.Errorf("unexpected request: %v %q", err, req.Method)
		}
		w.Write([]byte(`{"jsonrpc":"2.0","result":{"random":{"data":[12345]}},"id":1}`))
	}))
	defer srv.Close()

	src := NewRandomOrgSource("key")
	src.url = srv.URL
	if got := src.Seed(); got != 12345 {
		t.Fatalf("Seed() = %d, want 12345", got)
	}
}

func TestRandomOrgSourceFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","error":{"message":"bad key"},"id":1}`))
	}))
	defer srv.Close()

	src := NewRandomOrgSource("key")
	src.url = srv.URL
	if got := src.Seed(); got < 0 {
		t.Fatalf("fallback seed = %d", got)
	}
	if NewRandomOrgSource("") != nil {
		t.Fatal("empty key should disable the source")
	}
	var nilSource *RandomOrgSource
	if nilSource.Seed() < 0 {
		t.Fatal("nil source should fall back to crypto/rand")
	}
}
