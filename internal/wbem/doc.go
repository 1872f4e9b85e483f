// Package wbem models the instrumentation service boundary: the foreign
// tagged values the service hands out (Variant, SafeArray, BStr), the
// session/cursor/row interfaces the engine drives, the service error
// taxonomy, and an in-memory provider (Namespace) used by tests and as a
// local data source for the CLI.
//
// Foreign values are caller-owned: the conversion engine only reads them
// and must not keep them past the call that produced them. SafeArray is
// the one scoped resource - it must be locked before element reads and
// unlocked on every exit path, since a buffer left locked would be a
// process-wide leak on a real service.
package wbem
