package sql

import (
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		// Verify pgcrypto extension is created
		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'pgcrypto');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgcrypto extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		// Running Init multiple times should not error
		err := Init(db.Instance)
		assert.NoError(t, err)

		err = Init(db.Instance)
		assert.NoError(t, err)
	})
}

func TestLoadEntitiesSql(t *testing.T) {
	db := initDB(t)
	defer db.Instance.Close()

	t.Run("Load entities SQL functions", func(t *testing.T) {
		err := LoadEntitiesSql(db.Instance, false)
		assert.NoError(t, err)

		// Verify all functions exist
		for _, funcName := range EntitiesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load entities SQL is idempotent without force", func(t *testing.T) {
		err := LoadEntitiesSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load entities SQL with force reloads", func(t *testing.T) {
		err := LoadEntitiesSql(db.Instance, true)
		assert.NoError(t, err)

		for _, funcName := range EntitiesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist after force reload", funcName)
		}
	})
}

func TestLoadTagsSql(t *testing.T) {
	db := initDB(t)
	defer db.Instance.Close()

	t.Run("Load tags SQL functions", func(t *testing.T) {
		err := LoadTagsSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range TagsFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load tags SQL is idempotent without force", func(t *testing.T) {
		err := LoadTagsSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load tags SQL with force reloads", func(t *testing.T) {
		err := LoadTagsSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadTimelinesSql(t *testing.T) {
	db := initDB(t)
	defer db.Instance.Close()

	t.Run("Load timelines SQL functions", func(t *testing.T) {
		err := LoadTimelinesSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range TimelinesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load timelines SQL is idempotent without force", func(t *testing.T) {
		err := LoadTimelinesSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load timelines SQL with force reloads", func(t *testing.T) {
		err := LoadTimelinesSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadLinksSql(t *testing.T) {
	db := initDB(t)
	defer db.Instance.Close()

	t.Run("Load links SQL functions", func(t *testing.T) {
		err := LoadLinksSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range LinksFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load links SQL is idempotent without force", func(t *testing.T) {
		err := LoadLinksSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load links SQL with force reloads", func(t *testing.T) {
		err := LoadLinksSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)
	defer db.Instance.Close()

	t.Run("Load all SQL functions", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)

		allFunctions := [][]string{EntitiesFunctions, TagsFunctions, TimelinesFunctions, LinksFunctions}
		for _, functions := range allFunctions {
			for _, funcName := range functions {
				var exists bool
				err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
				require.NoError(t, err)
				assert.True(t, exists, "Function %s should exist", funcName)
			}
		}
	})

	t.Run("Load all SQL is idempotent without force", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load all SQL with force reloads", func(t *testing.T) {
		err := LoadAllSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)
	defer db.Instance.Close()

	t.Run("Check functions returns false when functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false for nonexistent function")
	})

	t.Run("Check functions returns true when all functions exist", func(t *testing.T) {
		err := LoadEntitiesSql(db.Instance, false)
		require.NoError(t, err)

		exists, err := checkFunctions(db.Instance, EntitiesFunctions)
		assert.NoError(t, err)
		assert.True(t, exists, "Should return true when all functions exist")
	})

	t.Run("Check functions returns false when some functions don't exist", func(t *testing.T) {
		mixedFunctions := append([]string{"init_entities"}, "nonexistent_function")
		exists, err := checkFunctions(db.Instance, mixedFunctions)
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false when some functions don't exist")
	})
}

func TestEmbeddedSQL(t *testing.T) {
	t.Run("Init SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, initSQL, "initSQL should be embedded")
		assert.Contains(t, initSQL, "CREATE EXTENSION", "Should contain CREATE EXTENSION")
	})

	t.Run("Entities SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, entitiesSQL, "entitiesSQL should be embedded")
		assert.Contains(t, entitiesSQL, "CREATE", "Should contain CREATE statements")
	})

	t.Run("Tags SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, tagsSQL, "tagsSQL should be embedded")
		assert.Contains(t, tagsSQL, "CREATE", "Should contain CREATE statements")
	})

	t.Run("Timelines SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, timelinesSQL, "timelinesSQL should be embedded")
		assert.Contains(t, timelinesSQL, "CREATE", "Should contain CREATE statements")
	})

	t.Run("Links SQL is embedded", func(t *testing.T) {
		assert.NotEmpty(t, linksSQL, "linksSQL should be embedded")
		assert.Contains(t, linksSQL, "CREATE", "Should contain CREATE statements")
	})
}
