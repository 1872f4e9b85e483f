// Package schema loads class definitions and instance datasets for the
// local instrumentation providers. Classes (name plus ordered typed
// properties) are written in CUE and validated on load; instance data is
// plain YAML. The two feed both the in-memory namespace and the SQLite
// provider.
package schema
