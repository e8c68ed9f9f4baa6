package analyzer

// countLZMatches tokenizes data with a greedy LZ77 parser bounded to a
// sliding window, counting the number of back-references it emits (a
// plain literal byte is never counted). This is a measurement
// instrument, not a compressor: no actual output is produced.
//
// Grounded on the hash-chain match finder shared by general-purpose
// LZ77 parsers: a rolling table keyed on the next minMatch bytes maps
// to candidate positions, searched newest-first and bounded to window.
func countLZMatches(data []byte, window, minMatch int) int {
	n := len(data)
	if n < minMatch {
		return 0
	}

	table := make(map[uint32][]int)
	hash := func(pos int) uint32 {
		var h uint32
		for i := 0; i < minMatch; i++ {
			h = h*131 + uint32(data[pos+i])
		}
		return h
	}

	matches := 0
	i := 0
	for i+minMatch <= n {
		h := hash(i)
		bestLen := 0
		minPos := i - window
		if positions, ok := table[h]; ok {
			for j := len(positions) - 1; j >= 0; j-- {
				p := positions[j]
				if p < minPos {
					break
				}
				l := matchLength(data, p, i)
				if l > bestLen {
					bestLen = l
				}
			}
		}

		if bestLen >= minMatch {
			matches++
			end := i + bestLen
			for k := i; k < end && k+minMatch <= n; k++ {
				hk := hash(k)
				table[hk] = insertPosition(table[hk], k, window)
			}
			i = end
		} else {
			table[h] = insertPosition(table[h], i, window)
			i++
		}
	}
	return matches
}

func matchLength(data []byte, a, b int) int {
	n := len(data)
	l := 0
	for b+l < n && data[a+l] == data[b+l] {
		l++
	}
	return l
}

// insertPosition appends pos and periodically drops entries that have
// already fallen outside the window, keeping each bucket small.
func insertPosition(positions []int, pos, window int) []int {
	positions = append(positions, pos)
	if len(positions) > 64 {
		cut := 0
		for cut < len(positions) && pos-positions[cut] > window {
			cut++
		}
		positions = positions[cut:]
	}
	return positions
}
