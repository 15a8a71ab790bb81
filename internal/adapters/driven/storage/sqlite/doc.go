// Package sqlite provides the local, file-backed vector store.
//
// Index definitions and records live in a single SQLite database
// (vectors.db) under the data directory. Vectors are stored as
// little-endian float32 blobs; similarity search scans one namespace and
// ranks in process.
//
// The schema is versioned with the embedded migrations in migrations/.
package sqlite
