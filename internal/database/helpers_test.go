package database

import (
	"path/filepath"
	"testing"

	"github.com/kdimtricp/videocatalog/internal/models"
)

func setupSQLiteDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(Config{
		Type:       TypeSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func newTestVideo(title, director, genre string) *models.Video {
	return models.NewVideo(title, "A test synopsis", director, []string{"Actor One", "Actor Two"}, 2010, genre, 120)
}

func ptr(s string) *string {
	return &s
}
