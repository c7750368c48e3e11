// Package repository provides Bun-backed persistence for countries and
// holidays: a generic CRUD base plus the unit-scoped batch save, keyset
// seek and count queries used by synchronization and pagination.
package repository
