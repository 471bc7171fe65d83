package migrate_test

import (
	"testing"

	"github.com/shipkit/shipkit/migrate"
)

func TestChecksum_Fixed(t *testing.T) {
	// SHA-256("hello"). The algorithm is pinned: a change here would
	// invalidate every recorded ledger checksum.
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := migrate.Checksum("hello"); got != want {
		t.Fatalf("Checksum(\"hello\") = %s, want %s", got, want)
	}
}

func TestChecksum_WhitespaceSensitive(t *testing.T) {
	a := migrate.Checksum("CREATE TABLE t (id INTEGER);")
	b := migrate.Checksum("CREATE TABLE t (id INTEGER); ")
	if a == b {
		t.Fatal("whitespace-only edits must change the checksum")
	}
}
