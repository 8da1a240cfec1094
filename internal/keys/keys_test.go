package keys

import (
	"strings"
	"testing"
)

func TestPhysicalDeterministic(t *testing.T) {
	inputs := []struct{ prefix, key string }{
		{"cache", "user//42"},
		{"cache", "a"},
		{"sessions", "x//y//z"},
		{"", "k"},
		{"p", "////"},
	}
	for _, in := range inputs {
		a := Physical(in.prefix, in.key)
		for i := 0; i < 5; i++ {
			if b := Physical(in.prefix, in.key); b != a {
				t.Fatalf("Physical(%q,%q) not stable: %q vs %q", in.prefix, in.key, a, b)
			}
		}
	}
}

func TestPhysicalLayout(t *testing.T) {
	got := Physical("cache", "user//42")
	want := "cache:user:42:" + Digest("user//42")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPhysicalSanitizedSegmentHasNoDoubleSlash(t *testing.T) {
	for _, k := range []string{"a//b", "////", "///", "x//y//z", "http://host//path"} {
		p := Physical("ns", k)
		seg := strings.TrimPrefix(p, "ns:")
		seg = seg[:len(seg)-len(Sep)-16]
		if strings.Contains(seg, "//") {
			t.Fatalf("sanitized segment %q of key %q still contains //", seg, k)
		}
	}
}

// "a//b" and "a:b" sanitize identically; the digest keeps them apart.
func TestPhysicalDisambiguatesCollisions(t *testing.T) {
	a := Physical("ns", "a//b")
	b := Physical("ns", "a:b")
	if a == b {
		t.Fatalf("expected distinct physical keys, both %q", a)
	}
	if !strings.HasPrefix(a, "ns:a:b:") || !strings.HasPrefix(b, "ns:a:b:") {
		t.Fatalf("unexpected layout: %q / %q", a, b)
	}
}

func TestDigestFixedWidth(t *testing.T) {
	for _, k := range []string{"", "a", "user//42", strings.Repeat("x", 4096)} {
		d := Digest(k)
		if len(d) != 16 {
			t.Fatalf("Digest(%q) = %q, want 16 chars", k, d)
		}
		if strings.Trim(d, "0123456789abcdef") != "" {
			t.Fatalf("Digest(%q) = %q is not lowercase hex", k, d)
		}
	}
}

func TestEscapeGlob(t *testing.T) {
	cases := map[string]string{
		"cache:":   "cache:",
		"a*:":      `a\*:`,
		"q?[x]:":   `q\?\[x\]:`,
		`back\sl:`: `back\\sl:`,
	}
	for in, want := range cases {
		if got := EscapeGlob(in); got != want {
			t.Errorf("EscapeGlob(%q) = %q want %q", in, got, want)
		}
	}
}

func TestOwnsOwnKeys(t *testing.T) {
	for _, k := range []string{"", "a", "user//42", "a:b", "///", "http://host//path", "x//y:z//w"} {
		if !Owns("cache", Physical("cache", k)) {
			t.Fatalf("cache does not own its key %q", k)
		}
	}
}

func TestOwnsSkipsNestedPrefix(t *testing.T) {
	cases := []struct{ outer, inner, key string }{
		{"a", "a:b", "k"},
		{"a", "a:b", "x//y"},
		{"a", "a:b:c", "k:l"},
		{"tenant", "tenant:7", ""},
	}
	for _, tc := range cases {
		sk := Physical(tc.inner, tc.key)
		if Owns(tc.outer, sk) {
			t.Fatalf("%q claims %q written under %q", tc.outer, sk, tc.inner)
		}
		if !Owns(tc.inner, sk) {
			t.Fatalf("%q does not own %q", tc.inner, sk)
		}
	}
	// "a" writing key "b:k" is its own entry, even though it looks nested
	if sk := Physical("a", "b:k"); !Owns("a", sk) || Owns("a:b", sk) {
		t.Fatalf("ownership of %q is wrong", sk)
	}
}

func TestOwnsForeignKeys(t *testing.T) {
	if Owns("a", "b:k:"+Digest("k")) {
		t.Fatalf("key outside the namespace claimed")
	}
	if Owns("user", Physical("users", "k")) {
		t.Fatalf("users entry claimed by user")
	}
	for _, sk := range []string{"a:plain", "a:k:NOTHEXNOTHEXNOTH", "a:"} {
		if !Owns("a", sk) {
			t.Fatalf("%q under a:, without a digest, should be claimed", sk)
		}
	}
}

func TestOwnsManySeparators(t *testing.T) {
	key := strings.Repeat("s:", maxExpand+1) + "end"
	if !Owns("a", Physical("a", key)) {
		t.Fatalf("long key not owned")
	}
	// past the cap, entries are claimed without proof
	if !Owns("a", Physical("a:b", key)) {
		t.Fatalf("past the cap Owns should claim")
	}
}
