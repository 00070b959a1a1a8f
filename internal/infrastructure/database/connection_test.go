package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/colony-go/internal/adapters/persistence"
	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
	"github.com/andrescamacho/colony-go/internal/infrastructure/database"
)

func TestNewTestConnection_MigratesEveryTable(t *testing.T) {
	db, err := database.NewTestConnection()
	require.NoError(t, err)
	defer database.Close(db)

	for _, table := range persistence.TableNames() {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestNewConnection_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colony.db")

	db, err := database.NewConnection(&config.DatabaseConfig{Type: "sqlite", Path: path})
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.AutoMigrate(db))
	assert.FileExists(t, path)
}

func TestNewConnection_RejectsUnknownType(t *testing.T) {
	_, err := database.NewConnection(&config.DatabaseConfig{Type: "mysql"})

	assert.ErrorContains(t, err, "unsupported database type")
}
