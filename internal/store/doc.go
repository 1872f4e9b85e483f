// Package store persists class declarations and instance data in SQLite
// and serves them back through the wbem session surface. It is the
// durable counterpart of the in-memory namespace provider: seed a
// database once with a schema and dataset, then point the client at it
// any number of times.
//
// Values are stored in wire shape rather than as native Go values, so a
// row read back from the database rebuilds the exact variants a live
// service would have delivered, malformed-payload checks included.
package store
