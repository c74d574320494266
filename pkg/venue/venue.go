// Package venue turns the subgroups of a promoted round into something
// actionable in the chat. Each subgroup is materialized independently;
// one failing subgroup never rolls back the round or the other subgroups.
package venue

import (
	"sync"

	"github.com/korjavin/donutbot/pkg/models"
)

// Materializer performs the side effect for a single subgroup, e.g.
// announcing it in the chat and inviting its members to meet.
type Materializer interface {
	Materialize(chatID int64, group models.Group) error
}

// Dispatch materializes every subgroup of a donut concurrently and
// returns one result per subgroup, in donut order. There is no aggregate
// failure: callers inspect the individual results.
func Dispatch(m Materializer, chatID int64, donut models.Donut) []models.VenueResult {
	results := make([]models.VenueResult, len(donut))

	var wg sync.WaitGroup
	for i, group := range donut {
		wg.Add(1)
		go func(i int, group models.Group) {
			defer wg.Done()
			results[i] = models.VenueResult{
				Group: group,
				Err:   m.Materialize(chatID, group),
			}
		}(i, group)
	}
	wg.Wait()

	return results
}
