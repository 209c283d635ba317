// Package storage provides the BBolt database interface for superpwdhash.
//
// Database structure uses three buckets:
//   - config: schema version, KDF parameters (salt, iterations), timestamps
//   - private: the encrypted master password check value
//   - sites: the site registry, one key per normalized realm
//
// Nothing in the database is a password. The check value only lets the
// CLI reject a mistyped master password before deriving anything.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
