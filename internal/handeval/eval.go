// Package handeval ranks five-to-seven card poker hands. It is pure and
// holds no table or game state.
package handeval

import (
	"sort"

	"agentpoker/internal/cards"
)

// Category orders the nine hand classes from weakest to strongest, plus a
// royal-flush label that is a naming-only special case of StraightFlush.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	Trips
	Straight
	Flush
	FullHouse
	Quads
	StraightFlush
)

var categoryName = map[Category]string{
	HighCard:      "high_card",
	Pair:          "pair",
	TwoPair:       "two_pair",
	Trips:         "three_of_a_kind",
	Straight:      "straight",
	Flush:         "flush",
	FullHouse:     "full_house",
	Quads:         "four_of_a_kind",
	StraightFlush: "straight_flush",
}

// HandRank is a fully-ordered hand strength: Category first, then Ranks as
// a tie-break vector compared element by element, high to low.
type HandRank struct {
	Category Category
	Ranks    []int
	Cards    []cards.Card
}

// Name renders the category as spec-facing label, special-casing a
// straight flush headed by an ace as "royal_flush".
func (h HandRank) Name() string {
	if h.Category == StraightFlush && len(h.Ranks) > 0 && h.Ranks[0] == int(cards.Ace) {
		return "royal_flush"
	}
	return categoryName[h.Category]
}

// Cmp returns a negative number if a is weaker than b, zero if they tie,
// and a positive number if a is stronger.
func Cmp(a, b HandRank) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	for i := 0; i < len(a.Ranks) && i < len(b.Ranks); i++ {
		if a.Ranks[i] != b.Ranks[i] {
			return a.Ranks[i] - b.Ranks[i]
		}
	}
	return 0
}

func better(h, o HandRank) bool {
	return Cmp(h, o) > 0
}

// Evaluate7 returns the best five-card hand obtainable from five to seven
// cards by enumerating every five-card subset (at most C(7,5)=21).
func Evaluate7(cs []cards.Card) HandRank {
	n := len(cs)
	if n < 5 || n > 7 {
		panic("handeval: Evaluate7 requires 5 to 7 cards")
	}
	best := HandRank{Category: -1}
	idx := [5]int{}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						idx[0], idx[1], idx[2], idx[3], idx[4] = a, b, c, d, e
						h := eval5(cs[idx[0]], cs[idx[1]], cs[idx[2]], cs[idx[3]], cs[idx[4]])
						if best.Category == -1 || better(h, best) {
							best = h
						}
					}
				}
			}
		}
	}
	return best
}

func eval5(c1, c2, c3, c4, c5 cards.Card) HandRank {
	hand := []cards.Card{c1, c2, c3, c4, c5}
	counts := map[int]int{}
	suits := map[cards.Suit]int{}
	ranks := make([]int, 0, 5)
	for _, c := range hand {
		r := int(c.Rank)
		counts[r]++
		suits[c.Suit]++
		ranks = append(ranks, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	isFlush := false
	for _, v := range suits {
		if v == 5 {
			isFlush = true
			break
		}
	}
	isStraight, highStraight := straightHigh(ranks)
	if isFlush && isStraight {
		return HandRank{Category: StraightFlush, Ranks: []int{highStraight}, Cards: hand}
	}

	type rc struct {
		rank  int
		count int
	}
	groups := make([]rc, 0, len(counts))
	for r, c := range counts {
		groups = append(groups, rc{rank: r, count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		kicker := highestExcluding(ranks, groups[0].rank)
		return HandRank{Category: Quads, Ranks: []int{groups[0].rank, kicker}, Cards: hand}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: FullHouse, Ranks: []int{groups[0].rank, groups[1].rank}, Cards: hand}
	case isFlush:
		return HandRank{Category: Flush, Ranks: ranks, Cards: hand}
	case isStraight:
		return HandRank{Category: Straight, Ranks: []int{highStraight}, Cards: hand}
	case groups[0].count == 3:
		kickers := topKickers(ranks, []int{groups[0].rank}, 2)
		return HandRank{Category: Trips, Ranks: append([]int{groups[0].rank}, kickers...), Cards: hand}
	case groups[0].count == 2 && groups[1].count == 2:
		highPair, lowPair := groups[0].rank, groups[1].rank
		kicker := highestExcluding(ranks, highPair, lowPair)
		return HandRank{Category: TwoPair, Ranks: []int{highPair, lowPair, kicker}, Cards: hand}
	case groups[0].count == 2:
		kickers := topKickers(ranks, []int{groups[0].rank}, 3)
		return HandRank{Category: Pair, Ranks: append([]int{groups[0].rank}, kickers...), Cards: hand}
	default:
		return HandRank{Category: HighCard, Ranks: ranks, Cards: hand}
	}
}

// straightHigh reports whether ranks contains five consecutive values and,
// if so, the high card of the best such run. The ace-low wheel (A-2-3-4-5)
// is the only wrap-around case; straights never wrap otherwise, so a hand
// like Q-K-A-2-3 does not qualify.
func straightHigh(ranks []int) (bool, int) {
	unique := uniqueRanks(ranks)
	sort.Sort(sort.Reverse(sort.IntSlice(unique)))
	if len(unique) < 5 {
		return checkWheel(unique)
	}
	for i := 0; i <= len(unique)-5; i++ {
		if unique[i]-unique[i+4] == 4 {
			return true, unique[i]
		}
	}
	return checkWheel(unique)
}

func checkWheel(unique []int) (bool, int) {
	if contains(unique, int(cards.Ace)) && contains(unique, 5) && contains(unique, 4) && contains(unique, 3) && contains(unique, 2) {
		return true, 5
	}
	return false, 0
}

func uniqueRanks(ranks []int) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(ranks))
	for _, r := range ranks {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func contains(arr []int, v int) bool {
	for _, x := range arr {
		if x == v {
			return true
		}
	}
	return false
}

func highestExcluding(ranks []int, exclude ...int) int {
	for _, r := range ranks {
		ok := true
		for _, e := range exclude {
			if r == e {
				ok = false
				break
			}
		}
		if ok {
			return r
		}
	}
	return 0
}

func topKickers(ranks []int, exclude []int, n int) []int {
	out := make([]int, 0, n)
	for _, r := range ranks {
		skip := false
		for _, e := range exclude {
			if r == e {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		out = append(out, r)
		if len(out) == n {
			break
		}
	}
	return out
}
