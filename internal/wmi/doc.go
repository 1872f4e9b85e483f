// Package wmi is the typed value marshaling engine. It drives a query
// against an instrumentation provider (wbem.Session), enumerates every
// result row, converts each dynamically-typed property into the closed
// cim.Value model, and hands callers immutable Objects with typed
// accessors.
//
// The engine is synchronous and strictly sequential: one call owns its
// cursor, its foreign buffers and its output, and either runs to
// completion or fails as a whole. There is no retry, no partial result
// and no per-property recovery - the first conversion or provider
// failure aborts the call.
package wmi
