package config

import (
	"strings"
	"testing"
)

func TestDSN_BuildsFromFields(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		User:     "pocketlist",
		Password: "s3cret",
		Name:     "pocketlist",
	}

	dsn := d.DSN()
	if !strings.Contains(dsn, "tcp(db.internal:3306)") {
		t.Errorf("expected default port appended, got %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime enabled, got %s", dsn)
	}
	// UPDATE ... with unchanged values must still count as a matched row,
	// or the repositories' RowsAffected()==0 check turns a valid no-op
	// patch into a 404.
	if !strings.Contains(dsn, "clientFoundRows=true") {
		t.Errorf("expected clientFoundRows enabled, got %s", dsn)
	}
}

func TestDSN_KeepsExplicitPort(t *testing.T) {
	d := DatabaseConfig{Host: "db.internal:3307", User: "u", Password: "p", Name: "n"}
	if dsn := d.DSN(); !strings.Contains(dsn, "tcp(db.internal:3307)") {
		t.Errorf("expected explicit port kept, got %s", dsn)
	}
}

func TestDSN_OverrideWinsUnchanged(t *testing.T) {
	d := DatabaseConfig{
		Host:        "ignored",
		dsnOverride: "user:pass@tcp(elsewhere:3306)/other?parseTime=true",
	}
	if dsn := d.DSN(); dsn != "user:pass@tcp(elsewhere:3306)/other?parseTime=true" {
		t.Errorf("expected DATABASE_URL passed through as-is, got %s", dsn)
	}
}
