package iprange

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineCIDR(t *testing.T) {
	b, err := ParseLine("192.168.1.0/30")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.0", b.First.String())
	assert.Equal(t, "192.168.1.3", b.Last.String())
	require.Len(t, b.Nets, 1)
}

func TestParseLineRange(t *testing.T) {
	b, err := ParseLine("10.0.0.1-10.0.0.6")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", b.First.String())
	assert.Equal(t, "10.0.0.6", b.Last.String())
	assert.NotEmpty(t, b.Nets)
}

func TestParseLineBareIP(t *testing.T) {
	b, err := ParseLine("172.16.5.9")
	require.NoError(t, err)
	assert.Equal(t, b.First.String(), b.Last.String())
}

func TestParseLineInvalid(t *testing.T) {
	for _, in := range []string{"300.1.2.3", "10.0.0.0/40", "10.0.0.1-banana", "hello"} {
		_, err := ParseLine(in)
		assert.Error(t, err, in)
	}
}

func TestExpandDeduplicates(t *testing.T) {
	a, err := ParseLine("192.168.1.0/30")
	require.NoError(t, err)
	b, err := ParseLine("192.168.1.2")
	require.NoError(t, err)

	ips, err := Expand([]Block{a, b})
	require.NoError(t, err)
	// Expanding again from the deduplicated result is stable.
	assert.Equal(t, []string{"192.168.1.0", "192.168.1.1", "192.168.1.2", "192.168.1.3"}, ips)
}

func TestOverlapsSymmetricPairs(t *testing.T) {
	a, _ := ParseLine("10.0.0.0/24")
	b, _ := ParseLine("10.0.0.128-10.0.1.5")
	c, _ := ParseLine("172.16.0.0/24")

	pairs := Overlaps([]FileBlocks{
		{Label: "scope_a", Blocks: []Block{a}},
		{Label: "scope_b", Blocks: []Block{b, c}},
	})
	require.Len(t, pairs, 1)
	assert.Equal(t, "scope_a", pairs[0].FileA)
	assert.Equal(t, "scope_b", pairs[0].FileB)
	assert.Equal(t, "10.0.0.0/24", pairs[0].BlockA)

	// Swapping file order reports the same single overlap.
	flipped := Overlaps([]FileBlocks{
		{Label: "scope_b", Blocks: []Block{b, c}},
		{Label: "scope_a", Blocks: []Block{a}},
	})
	assert.Len(t, flipped, 1)
}

func TestOverlapsNoFalsePositives(t *testing.T) {
	a, _ := ParseLine("10.0.0.0/25")
	b, _ := ParseLine("10.0.0.128/25")
	pairs := Overlaps([]FileBlocks{
		{Label: "a", Blocks: []Block{a}},
		{Label: "b", Blocks: []Block{b}},
	})
	assert.Empty(t, pairs)
}

func TestQuery(t *testing.T) {
	a, _ := ParseLine("192.168.0.0/31")
	b, _ := ParseLine("10.1.1.1")
	got := Query([]Block{a, b})
	assert.Equal(t,
		"asset.ipv4 BETWEEN 192.168.0.0 AND 192.168.0.1 || asset.ipv4 BETWEEN 10.1.1.1 AND 10.1.1.1",
		got)
}

func TestExtract(t *testing.T) {
	text := "gateway 10.1.2.3 serves 10.20.0.0/16, bad 999.1.1.1, dup 10.1.2.3 end"
	assert.Equal(t, []string{"10.1.2.3", "10.20.0.0/16"}, Extract(text))
}

func TestAnalyze(t *testing.T) {
	a1, _ := ParseLine("10.0.0.0/30") // .0-.3
	b1, _ := ParseLine("10.0.0.2")
	b2, _ := ParseLine("10.0.0.9")

	analysis, err := Analyze([]FileBlocks{
		{Label: "alpha", Blocks: []Block{a1}},
		{Label: "beta", Blocks: []Block{b1, b2}},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, analysis.Totals["alpha"])
	assert.Equal(t, 2, analysis.Totals["beta"])
	assert.Equal(t, []string{"10.0.0.0", "10.0.0.1", "10.0.0.3"}, analysis.Unique["alpha"])
	assert.Equal(t, []string{"10.0.0.9"}, analysis.Unique["beta"])
	assert.Equal(t, []string{"10.0.0.2"}, analysis.Common["alpha+beta"])
}

func TestOutputFileNames(t *testing.T) {
	assert.Equal(t, "scope1_unique_ips.txt", UniqueFileName("scope1"))
	assert.Equal(t, "CommonInScope1Scope2.txt", ComboFileName("scope1+scope2"))
}

func TestReadBlocksSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.txt")
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.0/30\nnot-a-range\n# note\n10.1.0.1\n"), 0o644))

	blocks, err := ReadBlocks(path)
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
}
