// Package db defines the storage data transfer objects and shared error
// values for the SeaFlow results database.
//
// The DTOs are built on scalars so that they stay agnostic of both the
// analysis code producing them and the database engine persisting them.
// Engine implementations live in subpackages; see db/postgresengine.
package db
