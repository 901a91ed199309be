// Package namegen produces synthetic resource names with short random suffixes.
package namegen

import utilrand "k8s.io/apimachinery/pkg/util/rand"

// Generate returns prefix followed by length random alphanumeric characters.
// The suffix alphabet is the apimachinery one: lowercase consonants and digits
// without vowels or lookalikes, so names stay DNS-safe.
// Uniqueness is probabilistic only.
func Generate(prefix string, length int) string {
	if length <= 0 {
		return prefix
	}
	return prefix + utilrand.String(length)
}
