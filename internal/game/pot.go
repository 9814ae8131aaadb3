package game

import "sort"

// CalculatePots partitions every player's TotalBetThisHand into a main pot and
// side pots. Folded players' chips count toward the amounts but never toward
// eligibility. A level that only folded players reached is folded into the
// previous pot, so the pot total always equals the sum of contributions.
// When nobody is eligible at all, existing is returned unchanged.
func CalculatePots(players []*Player, existing []Pot) []Pot {
	levels := contributionLevels(players)
	if len(levels) == 0 {
		return nil
	}

	pots := make([]Pot, 0, len(levels))
	var carry int64
	prev := int64(0)
	for _, level := range levels {
		delta := level - prev
		var amount int64
		eligible := make([]string, 0, len(players))
		for _, p := range players {
			over := p.TotalBetThisHand - prev
			if over <= 0 {
				continue
			}
			if over > delta {
				over = delta
			}
			amount += over
			if !p.Folded && p.TotalBetThisHand >= level {
				eligible = append(eligible, p.ID)
			}
		}
		prev = level

		if len(eligible) == 0 {
			if len(pots) > 0 {
				pots[len(pots)-1].Amount += amount
			} else {
				carry += amount
			}
			continue
		}
		amount += carry
		carry = 0

		if n := len(pots); n > 0 && sameIDs(pots[n-1].EligiblePlayerIDs, eligible) {
			pots[n-1].Amount += amount
			continue
		}
		pots = append(pots, Pot{Amount: amount, EligiblePlayerIDs: eligible})
	}

	if len(pots) == 0 {
		return existing
	}
	return pots
}

// contributionLevels returns the distinct positive totals in ascending order.
func contributionLevels(players []*Player) []int64 {
	seen := map[int64]bool{}
	levels := make([]int64, 0, len(players))
	for _, p := range players {
		v := p.TotalBetThisHand
		if v <= 0 || seen[v] {
			continue
		}
		seen[v] = true
		levels = append(levels, v)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
