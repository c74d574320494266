package rounds

import (
	"math/rand"

	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/partition"
)

// MaxAttempts bounds the overlap-avoidance regeneration loop.
const MaxAttempts = 10

// Generate produces a candidate round, re-partitioning up to MaxAttempts
// times when the candidate shares a subgroup with the previous round.
// Avoidance is best effort: when every attempt overlaps — always the case
// when only one partition exists, e.g. a roster of exactly groupSize
// members — the last candidate is returned anyway.
func Generate(rng *rand.Rand, members []models.Participant, groupSize int, previous models.Donut) models.Donut {
	var candidate models.Donut
	for i := 0; i < MaxAttempts; i++ {
		candidate = partition.Partition(rng, members, groupSize)
		if len(previous) == 0 || !partition.Overlaps(candidate, previous) {
			return candidate
		}
	}
	return candidate
}
