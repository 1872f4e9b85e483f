package wmi

import (
	"log/slog"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
	"github.com/therealcain/SimplerWMI/internal/wql"
)

// Client runs queries against one provider session and materializes the
// results. A Client owns its session; concurrent Query calls against the
// same Client are not supported and must serialize externally.
type Client struct {
	session wbem.Session
	log     *slog.Logger
	tokens  TokenGenerator
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for query lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTokenGenerator sets the call token generator. Tests use
// FixedGenerator for deterministic logs.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(c *Client) { c.tokens = g }
}

// NewClient wraps an established provider session.
func NewClient(session wbem.Session, opts ...Option) *Client {
	c := &Client{
		session: session,
		log:     slog.Default(),
		tokens:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the underlying session.
func (c *Client) Close() error {
	return c.session.Close()
}

// Query runs "SELECT <properties|*> FROM <class>" and materializes every
// result row. The call is all-or-nothing: any provider or conversion
// failure aborts it and no partial set is returned. Zero rows yield an
// empty set, not a failure.
func (c *Client) Query(class string, properties ...string) (ObjectSet, error) {
	token := c.tokens.Generate()
	text := wql.Build(class, properties)
	c.log.Debug("executing query", "call", token, "query", text)

	cursor, err := c.session.ExecQuery(text)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close() }()

	results := ObjectSet{}
	for {
		row, ok, err := cursor.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		obj, err := materializeRow(row)
		if err != nil {
			return nil, err
		}
		results = append(results, obj)
	}

	c.log.Debug("query complete", "call", token, "objects", len(results))
	return results, nil
}

// materializeRow converts one service row into an Object: fetch the full
// property-name list, then per name fetch the tagged value, classify on
// the array flag, convert, and insert. Duplicate names overwrite
// silently (they should not occur within one row). The row is released
// on every exit path.
func materializeRow(row wbem.Row) (*Object, error) {
	defer func() { _ = row.Close() }()

	names, err := row.PropertyNames()
	if err != nil {
		return nil, err
	}

	obj := &Object{props: make(map[string]cim.Value, len(names))}
	for _, name := range names {
		variant, tag, err := row.Get(name)
		if err != nil {
			return nil, err
		}
		value, err := convertVariant(variant, tag)
		if err != nil {
			return nil, err
		}
		if _, dup := obj.props[name]; !dup {
			obj.names = append(obj.names, name)
		}
		obj.props[name] = value
	}
	return obj, nil
}
