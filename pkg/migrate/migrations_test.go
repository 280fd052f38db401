package migrate

import "testing"

func TestMigrationDirIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir failed validation: %v", err)
	}
}
