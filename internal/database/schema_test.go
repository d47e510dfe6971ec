package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationFilesAreEmbedded(t *testing.T) {
	files, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}

	if len(files) == 0 {
		t.Fatal("No SQL migration files embedded")
	}

	if files[0].Name() != "00001_create_storage_slots_table.sql" {
		t.Errorf("Expected first migration to create storage_slots, got %s", files[0].Name())
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+file.Name())
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)
		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(contentStr, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}
}

func TestStorageSlotsTableHasRequiredColumns(t *testing.T) {
	content, err := fs.ReadFile(migrationsFS, migrationsDir+"/00001_create_storage_slots_table.sql")
	if err != nil {
		t.Fatalf("Failed to read storage_slots migration: %v", err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, "CREATE TABLE IF NOT EXISTS storage_slots") {
		t.Error("Migration does not create storage_slots")
	}
	if !strings.Contains(contentStr, "DROP TABLE IF EXISTS storage_slots") {
		t.Error("Migration does not drop storage_slots in down section")
	}

	requiredColumns := []string{
		"key VARCHAR(255) PRIMARY KEY",
		"data JSONB",
		"updated_at TIMESTAMP",
	}
	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("storage_slots missing required column definition: %s", column)
		}
	}
}
