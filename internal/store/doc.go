// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying storage mechanism from the
// application's core logic, so business rules stay independent of
// whether tasks live in a JSON file or a database.
package store
