// Package postgres is the PostgreSQL store backend. It opens the pool through
// the pgx database/sql driver, maps PostgreSQL error codes onto the store
// sentinels, and runs the shared sqlstore entity stores with numbered
// placeholders. It also persists background job records in the jobs table.
package postgres
