// Package model holds the persisted entities and registers their tables
// and indexes with the database migrations.
package model
