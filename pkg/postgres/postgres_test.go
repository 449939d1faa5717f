package postgres

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	filenames, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, filenames)

	assert.Equal(t, "001_init.sql", filenames[0])
	assert.True(t, sort.StringsAreSorted(filenames), "migrations must apply in lexical order")

	for _, filename := range filenames {
		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		require.NoError(t, err)
		assert.NotEmpty(t, content)
	}
}

func TestInitMigrationCreatesCoreTables(t *testing.T) {
	content, err := fs.ReadFile(migrationsFS, "migrations/001_init.sql")
	require.NoError(t, err)

	sql := string(content)
	assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS event"))
	assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS availability"))
}
