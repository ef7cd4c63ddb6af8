package ident

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func TestSanitizeToken_KnownInputs(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"gene/protein", "gene_protein"},
		{"3-prime-UTR", "_3_prime_UTR"},
		{"drug", "drug"},
		{"effect/phenotype", "effect_phenotype"},
		{"molecular_function", "molecular_function"},
		{"exposure", "exposure"},
		{"off-label use", "off_label_use"},
		{"contraindication", "contraindication"},
		{"a  b", "a_b"},
		{"a___b", "a_b"},
		{"_already_clean", "_already_clean"},
		{"ppi", "ppi"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeToken(tc.in), "input %q", tc.in)
	}
}

func TestSanitizeToken_DegenerateInputs(t *testing.T) {
	assert.Equal(t, "_", SanitizeToken(""))
	assert.Equal(t, "_", SanitizeToken("///"))
	assert.Equal(t, "_", SanitizeToken("---"))
	assert.Equal(t, "_", SanitizeToken("   "))
	assert.Equal(t, "_7", SanitizeToken("7"))
}

func TestSanitizeToken_AlwaysMatchesPattern(t *testing.T) {
	inputs := []string{
		"", "a", "9", "//", "gene/protein", "3-prime-UTR",
		"weird käse ünïcode", "tab\there", "new\nline", "\x00\x01",
		"UBERON:0002107", "a-b-c-d-", "-leading", "trailing-",
	}
	for _, in := range inputs {
		out := SanitizeToken(in)
		require.Regexp(t, tokenPattern, out, "input %q produced %q", in, out)
	}
}

func TestSanitizeToken_Idempotent(t *testing.T) {
	inputs := []string{
		"", "gene/protein", "3-prime-UTR", "already_clean", "_",
		"a b c", "99 problems", "mixed/CASE-Token", "ä",
	}
	for _, in := range inputs {
		once := SanitizeToken(in)
		assert.Equal(t, once, SanitizeToken(once), "input %q", in)
	}
}

func TestPrimeKey_JoinsSourceAndID(t *testing.T) {
	assert.Equal(t, "DrugBank:DB01050", PrimeKey("DB01050", "DrugBank"))
	assert.Equal(t, "NCBI:5297", PrimeKey("5297", "NCBI"))
	assert.Equal(t, "MONDO:12592", PrimeKey("12592", "MONDO"))
}

func TestPrimeKey_NamespacedIDPassesThrough(t *testing.T) {
	assert.Equal(t, "SBO:0000185", PrimeKey("SBO:0000185", "anything"))
	assert.Equal(t, "UBERON:0002107", PrimeKey("UBERON:0002107", "UBERON"))
	// Several colons: still namespaced, still untouched.
	assert.Equal(t, "a:b:c", PrimeKey("a:b:c", "src"))
}

func TestPrimeKey_DegenerateInputsStayDeterministic(t *testing.T) {
	assert.Equal(t, ":", PrimeKey("", ""))
	assert.Equal(t, "NCBI:", PrimeKey("", "NCBI"))
	assert.Equal(t, ":5297", PrimeKey("5297", ""))
	// Trailing colon has an empty remainder, so it is not a namespace.
	assert.Equal(t, "src:ABC:", PrimeKey("ABC:", "src"))
}
