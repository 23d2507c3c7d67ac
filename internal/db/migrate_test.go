package db

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationVersions(t *testing.T) {
	versions, err := migrationVersions()
	require.NoError(t, err)

	require.NotEmpty(t, versions)
	assert.True(t, sort.StringsAreSorted(versions))
	assert.Equal(t, "001_station_schema.sql", versions[0])
	for _, v := range versions {
		body, err := migrationFiles.ReadFile("migrations/" + v)
		require.NoError(t, err)
		assert.NotEmpty(t, body, v)
	}
}
