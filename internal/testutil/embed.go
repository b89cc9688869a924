// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const embedDims = 256

// HashEmbed is a deterministic bag-of-words embedding. Texts sharing no
// words are orthogonal apart from a small shared bias component.
func HashEmbed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, embedDims+1)
	vec[embedDims] = 0.01
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%embedDims]++
	}
	return vec, nil
}
