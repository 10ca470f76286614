package testhelpers

import (
	"testing"

	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

func TestSetupTestDBMigratesSchema(t *testing.T) {
	db := SetupTestDB(t)
	for _, model := range models.AllModels() {
		if !db.Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
}

func TestDropTable(t *testing.T) {
	db := SetupTestDB(t)
	DropTable(t, db, &models.Profile{})
	if db.Migrator().HasTable(&models.Profile{}) {
		t.Fatalf("expected profiles table to be dropped")
	}
}
