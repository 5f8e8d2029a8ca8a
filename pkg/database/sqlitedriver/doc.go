// Package sqlitedriver registers a SQLite database/sql driver under the
// name "sqlite3". When built with CGO (the default on macOS/Linux) it uses
// go-sqlcipher, which provides SQLCipher encryption (PRAGMA key) — the same
// encrypted-at-rest guarantee the local event/decision store needs. When
// CGO is unavailable it falls back to the pure-Go modernc.org/sqlite
// driver: the store itself is then unencrypted, and
// pkg/database.verifyOrSealKey instead seals a key-derived canary value
// in the settings table so a wrong db_key is still caught on open,
// rather than silently opening the store under any key.
//
// Import this package for its side effects only:
//
//	import _ "github.com/watchit/watchit/pkg/database/sqlitedriver"
package sqlitedriver
