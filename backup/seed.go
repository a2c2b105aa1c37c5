package backup

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
	"gopkg.in/yaml.v3"
)

// SeedDate is a partial date in a seed file. Zero means unset.
type SeedDate struct {
	Year  int `yaml:"year"`
	Month int `yaml:"month"`
	Day   int `yaml:"day"`
}

// SeedTag is a tag in a seed file. An absent name makes an anonymous tag.
type SeedTag struct {
	Name  *string `yaml:"name"`
	Value string  `yaml:"value"`
}

// SeedEntity is an entity in a seed file.
type SeedEntity struct {
	Name  string    `yaml:"name"`
	Start SeedDate  `yaml:"start"`
	End   *SeedDate `yaml:"end"`
	Tags  []SeedTag `yaml:"tags"`
}

// SeedTimeline is a timeline in a seed file. Sub-timelines and linked
// entities are referenced by name, since seed files are written before any
// ids exist.
type SeedTimeline struct {
	Name         string    `yaml:"name"`
	Expression   string    `yaml:"bool_expr"`
	Tags         []SeedTag `yaml:"tags"`
	Subtimelines []string  `yaml:"subtimelines"`
	Entities     []string  `yaml:"entities"`
}

// Seed is the root document of a YAML seed file.
type Seed struct {
	Entities  []SeedEntity   `yaml:"entities"`
	Timelines []SeedTimeline `yaml:"timelines"`
}

// ImportSeed loads a YAML seed file into the database. Entities are created
// first, then timelines, then the name references are resolved into links. A
// reference to a name the seed does not define is an error.
func (m *Manager) ImportSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return helper.NewError("read seed file", err)
	}

	var seed Seed
	err = yaml.Unmarshal(data, &seed)
	if err != nil {
		return helper.NewError("unmarshal seed file", err)
	}

	return m.importSeed(&seed)
}

func (m *Manager) importSeed(seed *Seed) error {
	entityIDs, err := m.seedEntities(seed.Entities)
	if err != nil {
		return helper.NewError("seeding entities", err)
	}

	timelineIDs := make(map[string]*model.Timeline, len(seed.Timelines))
	for _, seedTimeline := range seed.Timelines {
		timeline, err := model.NewTimeline(seedTimeline.Name, seedTimeline.Expression)
		if err != nil {
			return helper.NewError("seeding timeline", err)
		}

		err = m.timelines.InsertTimeline(timeline)
		if err != nil {
			return helper.NewError("seeding timeline", err)
		}

		for _, tag := range seedTimeline.Tags {
			err = m.tags.InsertTimelineTag(timeline.ID, seedTag(tag))
			if err != nil {
				return helper.NewError("seeding timeline tag", err)
			}
		}

		timelineIDs[timeline.Name] = timeline
	}

	// Resolve name references once all ids exist.
	for _, seedTimeline := range seed.Timelines {
		parent := timelineIDs[seedTimeline.Name]

		for _, childName := range seedTimeline.Subtimelines {
			child, ok := timelineIDs[childName]
			if !ok {
				return fmt.Errorf("seed timeline %q references unknown timeline %q", seedTimeline.Name, childName)
			}
			err = m.links.InsertSubtimeline(parent.ID, child.ID)
			if err != nil {
				return helper.NewError("seeding sub-timeline", err)
			}
		}

		for _, entityName := range seedTimeline.Entities {
			entityID, ok := entityIDs[entityName]
			if !ok {
				return fmt.Errorf("seed timeline %q references unknown entity %q", seedTimeline.Name, entityName)
			}
			err = m.links.InsertTimelineEntity(parent.ID, entityID)
			if err != nil {
				return helper.NewError("seeding entity link", err)
			}
		}
	}

	m.logger.Info("Imported seed", "entities", len(seed.Entities), "timelines", len(seed.Timelines))

	return nil
}

func (m *Manager) seedEntities(seedEntities []SeedEntity) (map[string]uuid.UUID, error) {
	entityIDs := make(map[string]uuid.UUID, len(seedEntities))

	for _, seedEntity := range seedEntities {
		start, err := model.NewDate(seedEntity.Start.Year, seedEntity.Start.Month, seedEntity.Start.Day)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", seedEntity.Name, err)
		}

		var end *model.Date
		if seedEntity.End != nil {
			date, err := model.NewDate(seedEntity.End.Year, seedEntity.End.Month, seedEntity.End.Day)
			if err != nil {
				return nil, fmt.Errorf("entity %q: %w", seedEntity.Name, err)
			}
			end = &date
		}

		entity, err := model.NewEntity(seedEntity.Name, start, end, nil)
		if err != nil {
			return nil, err
		}

		err = m.entities.InsertEntity(entity)
		if err != nil {
			return nil, err
		}

		for _, tag := range seedEntity.Tags {
			err = m.tags.InsertEntityTag(entity.ID, seedTag(tag))
			if err != nil {
				return nil, err
			}
		}

		entityIDs[entity.Name] = entity.ID
	}

	return entityIDs, nil
}

func seedTag(tag SeedTag) model.Tag {
	if tag.Name == nil {
		return model.AnonymousTag(tag.Value)
	}
	return model.NamedTag(*tag.Name, tag.Value)
}
