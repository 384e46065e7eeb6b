package repository

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestDSNWithFoundRows(t *testing.T) {
	dsn, err := dsnWithFoundRows("root:password@tcp(127.0.0.1:3306)/postpad?parseTime=true")
	if err != nil {
		t.Fatalf("dsnWithFoundRows() unexpected error: %v", err)
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("produced DSN does not parse: %v", err)
	}
	if !cfg.ClientFoundRows {
		t.Error("ClientFoundRows not set; no-op updates would report zero affected rows")
	}
	if !cfg.ParseTime {
		t.Error("existing DSN parameters were dropped")
	}
	if !strings.HasSuffix(cfg.DBName, "postpad") {
		t.Errorf("database name %q lost in rewriting", cfg.DBName)
	}
}

func TestDSNWithFoundRowsInvalid(t *testing.T) {
	if _, err := dsnWithFoundRows("://not a dsn"); err == nil {
		t.Error("dsnWithFoundRows() accepted an unparseable DSN")
	}
}
