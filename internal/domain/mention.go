package domain

import "math/big"

// Mention is one inbound item from the platform's mention feed.
type Mention struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
}

// CompareMentionIDs orders two mention ids numerically.
// Platform ids are decimal strings that exceed int64/float64 range, so the
// comparison goes through math/big. Returns -1, 0, or +1; ids that fail to
// parse sort first so a malformed id can never advance a cursor.
func CompareMentionIDs(a, b string) int {
	ai, aok := new(big.Int).SetString(a, 10)
	bi, bok := new(big.Int).SetString(b, 10)
	if !aok && !bok {
		return 0
	}
	if !aok {
		return -1
	}
	if !bok {
		return 1
	}
	return ai.Cmp(bi)
}
