// Package document deduplicates a batch of uploaded PDF filings. Documents
// are grouped by the case number in their filename, clustered by simhash
// proximity inside each group, and one representative per cluster is kept.
package document

import (
	"crypto/md5"
	"encoding/binary"
	"math/bits"
	"strings"
)

// Fingerprint is a 64-bit simhash of a document's word tokens. Similar token
// bags produce fingerprints a small Hamming distance apart.
type Fingerprint uint64

// Distance returns the number of differing bits.
func (f Fingerprint) Distance(o Fingerprint) int {
	return bits.OnesCount64(uint64(f) ^ uint64(o))
}

// Tokenize splits text on runs of whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Simhash folds tokens into a fingerprint. Every occurrence votes +1 on the
// bits set in the token's hash and -1 on the others; a bit is set when its
// vote is positive. An empty token list yields 0.
func Simhash(tokens []string) Fingerprint {
	var weights [64]int
	for _, tok := range tokens {
		h := hashToken(tok)
		for bit := 0; bit < 64; bit++ {
			if h&(uint64(1)<<bit) != 0 {
				weights[bit]++
			} else {
				weights[bit]--
			}
		}
	}
	var out uint64
	for bit := 0; bit < 64; bit++ {
		if weights[bit] > 0 {
			out |= uint64(1) << bit
		}
	}
	return Fingerprint(out)
}

// FingerprintText tokenizes and hashes text.
func FingerprintText(text string) Fingerprint {
	return Simhash(Tokenize(text))
}

// hashToken keeps the low 64 bits of the token's md5 digest.
func hashToken(tok string) uint64 {
	sum := md5.Sum([]byte(tok))
	return binary.BigEndian.Uint64(sum[8:])
}
