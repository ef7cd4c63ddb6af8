// Package ident derives stable external keys and schema-legal tokens from
// the free-form identifier strings that ship with the raw PrimeKG tables.
//
// Both functions are pure and deterministic: the same input always produces
// the same output, and neither touches any state. Row filtering (dropping
// records with missing critical fields) is the caller's job — these
// functions never fail, they only normalize.
package ident

import "strings"

// FallbackToken is returned by SanitizeToken when nothing of the input
// survives sanitization. It is itself a legal label token.
const FallbackToken = "_"

// SanitizeToken turns an arbitrary string into a token legal as a Neo4j
// label or relationship type, i.e. matching ^[A-Za-z_][A-Za-z0-9_]*$.
//
// Every character outside [0-9A-Za-z_] becomes an underscore, runs of
// underscores collapse to one, and a leading digit gets an underscore
// prefix. SanitizeToken is idempotent: feeding its output back in returns
// the same token.
//
//	SanitizeToken("gene/protein") == "gene_protein"
//	SanitizeToken("3-prime-UTR")  == "_3_prime_UTR"
func SanitizeToken(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 1)

	underscore := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		legal := c == '_' ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9')

		if legal && c != '_' {
			b.WriteByte(c)
			underscore = false
			continue
		}
		// Underscore or illegal byte: both map to '_', collapsed.
		// Multi-byte UTF-8 sequences land here byte by byte and fold
		// into a single underscore.
		if !underscore {
			b.WriteByte('_')
			underscore = true
		}
	}

	s := b.String()
	if s == "" {
		return FallbackToken
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "_" + s
	}
	return s
}

// PrimeKey derives the stable external identifier for a node from its raw
// id and originating source database.
//
// Ids that already carry a namespace (a colon with a non-empty remainder,
// e.g. "SBO:0000185") pass through unchanged; everything else is prefixed
// with the source, e.g. PrimeKey("DB01050", "DrugBank") == "DrugBank:DB01050".
//
// Empty inputs yield degenerate but deterministic keys (":" at worst) —
// upstream row validation filters those before this function runs.
func PrimeKey(rawID, source string) string {
	if i := strings.IndexByte(rawID, ':'); i >= 0 && i+1 < len(rawID) {
		return rawID
	}
	return source + ":" + rawID
}
