package iprange

import (
	"fmt"
	"strings"
)

// Query renders blocks as an asset-search expression, one BETWEEN clause
// per block joined by ||, ready to paste into an inventory console.
func Query(blocks []Block) string {
	clauses := make([]string, 0, len(blocks))
	for _, b := range blocks {
		clauses = append(clauses,
			fmt.Sprintf("asset.ipv4 BETWEEN %s AND %s", b.First, b.Last))
	}
	return strings.Join(clauses, " || ")
}
