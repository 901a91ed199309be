package namegen

import (
	"regexp"
	"strings"
	"testing"
)

var suffixPattern = regexp.MustCompile(`^route[A-Za-z0-9]{8}$`)

func TestGenerate_PrefixAndLength(t *testing.T) {
	name := Generate("route", 8)
	if !strings.HasPrefix(name, "route") {
		t.Fatalf("expected prefix route, got %s", name)
	}
	if len(name) != len("route")+8 {
		t.Fatalf("expected length %d, got %d", len("route")+8, len(name))
	}
	if !suffixPattern.MatchString(name) {
		t.Fatalf("name %s does not match %s", name, suffixPattern)
	}
}

func TestGenerate_ZeroLength(t *testing.T) {
	if got := Generate("pod", 0); got != "pod" {
		t.Fatalf("expected bare prefix, got %s", got)
	}
}

func TestGenerate_LowCollisionRate(t *testing.T) {
	const n = 2000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		seen[Generate("route", 8)] = struct{}{}
	}
	// 27^8 possible suffixes; a collision in 2000 draws is vanishingly rare.
	if len(seen) < n-1 {
		t.Fatalf("too many collisions: %d unique of %d", len(seen), n)
	}
}
