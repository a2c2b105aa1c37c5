package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed entities.sql
var entitiesSQL string

//go:embed tags.sql
var tagsSQL string

//go:embed timelines.sql
var timelinesSQL string

//go:embed links.sql
var linksSQL string

// Function lists for verification
var EntitiesFunctions = []string{
	"init_entities",
	"insert_entity",
	"upsert_entity",
	"update_entity",
	"select_entity",
	"select_entity_by_name",
	"select_all_entities",
	"select_all_entities_reduced",
	"search_entities",
	"delete_entity",
	"count_entities",
}

var TagsFunctions = []string{
	"init_tags",
	"insert_entity_tag",
	"select_entity_tags",
	"select_all_entity_tags",
	"select_entity_tag_counts",
	"update_matching_entity_tags",
	"delete_entity_tags",
	"count_entity_tags",
	"insert_timeline_tag",
	"select_timeline_tags",
	"select_timeline_tag_counts",
	"update_matching_timeline_tags",
	"delete_timeline_tags",
	"count_timeline_tags",
}

var TimelinesFunctions = []string{
	"init_timelines",
	"insert_timeline",
	"upsert_timeline",
	"update_timeline",
	"select_timeline",
	"select_timeline_by_name",
	"select_all_timelines",
	"select_all_timelines_reduced",
	"delete_timeline",
	"count_timelines",
}

var LinksFunctions = []string{
	"init_links",
	"insert_subtimeline",
	"select_subtimeline_children",
	"delete_subtimeline",
	"count_subtimelines",
	"insert_timeline_entity",
	"select_timeline_entity_ids",
	"delete_timeline_entity",
	"count_timeline_entities",
	"clear_database",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadEntitiesSql loads entity-related SQL functions
func LoadEntitiesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, EntitiesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing entities functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(entitiesSQL)
	if err != nil {
		return fmt.Errorf("error executing entities SQL: %w", err)
	}

	exist, err := checkFunctions(db, EntitiesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL entities functions loaded successfully")
	return nil
}

// LoadTagsSql loads tag-related SQL functions
func LoadTagsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, TagsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing tags functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(tagsSQL)
	if err != nil {
		return fmt.Errorf("error executing tags SQL: %w", err)
	}

	exist, err := checkFunctions(db, TagsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL tags functions loaded successfully")
	return nil
}

// LoadTimelinesSql loads timeline-related SQL functions
func LoadTimelinesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, TimelinesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing timelines functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(timelinesSQL)
	if err != nil {
		return fmt.Errorf("error executing timelines SQL: %w", err)
	}

	exist, err := checkFunctions(db, TimelinesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL timelines functions loaded successfully")
	return nil
}

// LoadLinksSql loads sub-timeline and entity-link SQL functions
func LoadLinksSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, LinksFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing links functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(linksSQL)
	if err != nil {
		return fmt.Errorf("error executing links SQL: %w", err)
	}

	exist, err := checkFunctions(db, LinksFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL links functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadEntitiesSql(db, force); err != nil {
		return err
	}

	if err := LoadTagsSql(db, force); err != nil {
		return err
	}

	if err := LoadTimelinesSql(db, force); err != nil {
		return err
	}

	if err := LoadLinksSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
