// Package database provides connection management, versioned migrations,
// model registration, SQL error classification, query hooks, health checks
// and logging for the holiday store, built on top of Bun.
package database
