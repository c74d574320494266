// Package partition implements the donut generation primitives: splitting
// a roster into random subgroups and detecting when two rounds share a
// subgroup. Both operations are pure; randomness comes from the caller so
// tests can seed it.
package partition

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/korjavin/donutbot/pkg/models"
)

// DefaultGroupSize is used when a command does not specify a size.
const DefaultGroupSize = 2

// Partition shuffles the members and slices them into groups of groupSize.
// When the leftover after forming a group is non-empty but no larger than
// half a group, it is folded into the group just formed instead of becoming
// an undersized trailing group. A groupSize below 1 falls back to
// DefaultGroupSize; an empty member list yields an empty donut.
func Partition(rng *rand.Rand, members []models.Participant, groupSize int) models.Donut {
	if groupSize < 1 {
		groupSize = DefaultGroupSize
	}

	pool := make([]models.Participant, len(members))
	copy(pool, members)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	donut := models.Donut{}
	for len(pool) > 0 {
		n := groupSize
		if n > len(pool) {
			n = len(pool)
		}
		group := models.Group(pool[:n:n])
		pool = pool[n:]

		if len(pool) > 0 && len(pool) <= groupSize/2 {
			group = append(group, pool...)
			pool = nil
		}
		donut = append(donut, group)
	}
	return donut
}

// Overlaps reports whether the two donuts share at least one subgroup with
// exactly the same member IDs. It compares whole subgroups, not individual
// pairings, and stops at the first match.
func Overlaps(a, b models.Donut) bool {
	seen := make(map[string]bool, len(b))
	for _, g := range b {
		seen[groupKey(g)] = true
	}
	for _, g := range a {
		if seen[groupKey(g)] {
			return true
		}
	}
	return false
}

// groupKey canonicalizes a group's membership so set equality reduces to
// string equality.
func groupKey(g models.Group) string {
	ids := make([]string, len(g))
	for i, p := range g {
		ids[i] = p.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}
