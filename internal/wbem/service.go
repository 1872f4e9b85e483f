package wbem

import "github.com/therealcain/SimplerWMI/internal/cim"

// DefaultNamespace is the namespace providers connect to when the caller
// does not pick one.
const DefaultNamespace = `ROOT\CIMV2`

// Session is an established connection to an instrumentation provider.
// Sessions are not safe for concurrent queries; callers that share one
// must serialize externally.
type Session interface {
	// ExecQuery runs a query ("SELECT props FROM Class") and returns a
	// forward-only cursor over the result rows. Fails with a QUERY_FAILED
	// ServiceError.
	ExecQuery(text string) (Cursor, error)

	// Close releases the session. Idempotent.
	Close() error
}

// Cursor iterates the rows of one query result, in service order.
type Cursor interface {
	// Next returns the next row. ok is false once the cursor is
	// exhausted. May block on the underlying service; failures surface
	// as CURSOR_FAILED ServiceErrors.
	Next() (row Row, ok bool, err error)

	// Close releases the cursor and any rows it still owns. Idempotent.
	Close() error
}

// Row is one result object held by the service. The engine reads every
// declared property from it and then releases it.
type Row interface {
	// PropertyNames returns the full property-name list in the order the
	// service declares it. Fails with a PROPERTY_FAILED ServiceError.
	PropertyNames() ([]string, error)

	// Get fetches the tagged value for one property. The returned
	// Variant is owned by the row and must not outlive it. Fails with a
	// PROPERTY_FAILED ServiceError.
	Get(name string) (*Variant, cim.Type, error)

	// Close releases the row. Idempotent.
	Close() error
}
