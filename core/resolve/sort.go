package resolve

import (
	"sort"

	"github.com/opentimeline/opentimeline/model"
)

// SortEntities orders entities chronologically by start date, comparing
// partial-precision dates with missing parts sorting earliest. Entities with
// equal start dates are ordered by name.
func SortEntities(entities []*model.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		if c := entities[i].Start.Compare(entities[j].Start); c != 0 {
			return c < 0
		}
		return entities[i].Name < entities[j].Name
	})
}
