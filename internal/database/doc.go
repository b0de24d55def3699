// Package database stores phishing attempts and system events in SQLite.
//
// EventDB implements the pipeline's event sink. Each attempt row keeps the
// URL, verdict and the stage that produced it; system events record
// startup, shutdown and model recovery. IDs are random UUIDs.
//
// The driver is modernc.org/sqlite, a CGO-free SQLite, so the database is
// a single file under the data directory.
package database
