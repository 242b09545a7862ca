package iprange

import "net"

// OverlapPair records two blocks from different files that share at
// least one address.
type OverlapPair struct {
	FileA, FileB   string
	BlockA, BlockB string
}

// FileBlocks pairs a file label with its parsed blocks.
type FileBlocks struct {
	Label  string
	Blocks []Block
}

// Overlaps compares every block of every file against every block of
// every later file and reports the overlapping pairs. Blocks within the
// same file are not compared. The relation is symmetric; each pair is
// reported once, in file order.
func Overlaps(files []FileBlocks) []OverlapPair {
	var pairs []OverlapPair
	for i := 0; i < len(files); i++ {
		for j := i + 1; j < len(files); j++ {
			for _, a := range files[i].Blocks {
				for _, b := range files[j].Blocks {
					if blocksOverlap(a, b) {
						pairs = append(pairs, OverlapPair{
							FileA:  files[i].Label,
							FileB:  files[j].Label,
							BlockA: a.Source,
							BlockB: b.Source,
						})
					}
				}
			}
		}
	}
	return pairs
}

// blocksOverlap is true when any covering network of one block contains
// an endpoint of the other. Because both blocks are contiguous address
// runs, endpoint containment in either direction is sufficient.
func blocksOverlap(a, b Block) bool {
	return netsContain(a.Nets, b.First) || netsContain(a.Nets, b.Last) ||
		netsContain(b.Nets, a.First) || netsContain(b.Nets, a.Last)
}

func netsContain(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
