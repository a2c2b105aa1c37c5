package main

import (
	"context"
	"fmt"
	"log"

	"github.com/opentimeline/opentimeline"
	"github.com/opentimeline/opentimeline/helper"
	"github.com/opentimeline/opentimeline/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "opentimeline",
		Username: "opentimeline",
		Password: "opentimeline",
	}

	ot, err := opentimeline.NewOpenTimeline(dbConfig, model.DefaultResolveConfig())
	if err != nil {
		log.Fatalf("Failed to create opentimeline: %v", err)
	}
	defer ot.Close()

	// A few entities: two fully dated events, one year-precision period
	somme := mustDate(1916, 7, 1)
	sommeEnd := mustDate(1916, 11, 18)
	insertEntity(ot, "Battle of the Somme", somme, &sommeEnd,
		model.NamedTag("war", "ww1"), model.NamedTag("kind", "battle"))

	insertEntity(ot, "Armistice of Compiègne", mustDate(1918, 11, 11), nil,
		model.NamedTag("war", "ww1"))

	interwarEnd := mustDate(1939, 0, 0)
	interwar := insertEntity(ot, "Interwar period", mustDate(1918, 0, 0), &interwarEnd,
		model.AnonymousTag("peace"))

	// A root timeline selecting by expression, with a nested sub-timeline
	// contributing one directly linked entity
	root, err := model.NewTimeline("The Great War", `war = "ww1"`)
	if err != nil {
		log.Fatalf("Failed to create timeline: %v", err)
	}
	if err := ot.CreateTimeline(root); err != nil {
		log.Fatalf("Failed to insert timeline: %v", err)
	}

	aftermath, err := model.NewTimeline("Aftermath", "")
	if err != nil {
		log.Fatalf("Failed to create timeline: %v", err)
	}
	if err := ot.CreateTimeline(aftermath); err != nil {
		log.Fatalf("Failed to insert timeline: %v", err)
	}

	if err := ot.AddSubtimeline(root.ID, aftermath.ID); err != nil {
		log.Fatalf("Failed to nest sub-timeline: %v", err)
	}
	if err := ot.LinkEntity(aftermath.ID, interwar.ID); err != nil {
		log.Fatalf("Failed to link entity: %v", err)
	}

	// Render the root: expression matches, direct links and all sub-timeline
	// contributions, deduplicated and in chronological order
	view, err := ot.RenderTimeline(context.Background(), root.ID)
	if err != nil {
		log.Fatalf("Failed to render timeline: %v", err)
	}

	fmt.Printf("%s\n", view.Name)
	for _, entity := range view.Entities {
		if entity.End != nil {
			fmt.Printf("  %s – %s  %s\n", entity.Start.ShortFormat(), entity.End.ShortFormat(), entity.Name)
		} else {
			fmt.Printf("  %s  %s\n", entity.Start.ShortFormat(), entity.Name)
		}
	}

	stats, err := ot.Stats()
	if err != nil {
		log.Fatalf("Failed to read stats: %v", err)
	}
	fmt.Printf("\n%d entities, %d timelines\n", stats.Entities, stats.Timelines)
}

func mustDate(year, month, day int) model.Date {
	date, err := model.NewDate(year, month, day)
	if err != nil {
		log.Fatalf("Failed to create date: %v", err)
	}
	return date
}

func insertEntity(ot *opentimeline.OpenTimeline, name string, start model.Date, end *model.Date, tags ...model.Tag) *model.Entity {
	entity, err := model.NewEntity(name, start, end, tags)
	if err != nil {
		log.Fatalf("Failed to create entity %v: %v", name, err)
	}
	if err := ot.CreateEntity(entity); err != nil {
		log.Fatalf("Failed to insert entity %v: %v", name, err)
	}
	return entity
}
