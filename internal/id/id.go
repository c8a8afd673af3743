// Package id generates prefixed NanoID identifiers such as "cigar-V1StGXR8_Z5jdHi6B-myT".
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each record type.
const (
	PrefixCigar   = "cigar"
	PrefixTasting = "tasting"
	PrefixToken   = "tok"
)

// Generate returns prefix + "-" + a 21 character NanoID.
func Generate(prefix string) (string, error) {
	raw, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + raw, nil
}

// MustGenerate is like Generate but panics when the system is out of entropy.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("generate id: %v", err))
	}
	return v
}

// HasPrefix reports whether v was generated with prefix.
func HasPrefix(v, prefix string) bool {
	return strings.HasPrefix(v, prefix+"-") && len(v) > len(prefix)+1
}
