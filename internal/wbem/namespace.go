package wbem

import (
	"fmt"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wql"
)

// PropertyDef declares one property of a class: its case-sensitive name
// and its wire type tag.
type PropertyDef struct {
	Name string
	Type cim.Type
}

// Namespace is an in-memory instrumentation provider. It serves the same
// Session/Cursor/Row surface a remote service would, which makes it both
// the test double for the engine and a local data source for the CLI.
type Namespace struct {
	// Name is the namespace path, e.g. ROOT\CIMV2.
	Name string

	classes map[string]*Class
	order   []string
}

// NewNamespace creates an empty namespace. An empty name selects
// DefaultNamespace.
func NewNamespace(name string) *Namespace {
	if name == "" {
		name = DefaultNamespace
	}
	return &Namespace{
		Name:    name,
		classes: make(map[string]*Class),
	}
}

// Class is one object class: declared properties plus instances.
type Class struct {
	Name string

	props     []PropertyDef
	tags      map[string]cim.Type
	instances []map[string]*Variant
}

// AddClass declares a class. Property names must be unique within the
// class; redeclaring a class is an error.
func (n *Namespace) AddClass(name string, props ...PropertyDef) (*Class, error) {
	if _, exists := n.classes[name]; exists {
		return nil, fmt.Errorf("class %s already declared", name)
	}
	c := &Class{
		Name: name,
		tags: make(map[string]cim.Type, len(props)),
	}
	for _, p := range props {
		if _, dup := c.tags[p.Name]; dup {
			return nil, fmt.Errorf("class %s: duplicate property %s", name, p.Name)
		}
		c.props = append(c.props, p)
		c.tags[p.Name] = p.Type
	}
	n.classes[name] = c
	n.order = append(n.order, name)
	return c, nil
}

// Class looks up a declared class.
func (n *Namespace) Class(name string) (*Class, bool) {
	c, ok := n.classes[name]
	return c, ok
}

// Classes returns the declared classes in declaration order.
func (n *Namespace) Classes() []*Class {
	out := make([]*Class, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.classes[name])
	}
	return out
}

// Properties returns the declared properties in declaration order.
func (c *Class) Properties() []PropertyDef {
	return c.props
}

// AddInstance adds an instance from native Go values, encoding each into
// the foreign representation its declared tag calls for. Properties left
// out of values get the tag's zero variant; keys not declared on the
// class are an error.
func (c *Class) AddInstance(values map[string]any) error {
	inst := make(map[string]*Variant, len(c.props))
	for name := range values {
		if _, ok := c.tags[name]; !ok {
			return fmt.Errorf("class %s has no property %s", c.Name, name)
		}
	}
	for _, p := range c.props {
		v, present := values[p.Name]
		var variant *Variant
		var err error
		if present {
			variant, err = NewVariant(p.Type, v)
		} else {
			variant, err = ZeroVariant(p.Type)
		}
		if err != nil {
			return fmt.Errorf("class %s, property %s: %w", c.Name, p.Name, err)
		}
		inst[p.Name] = variant
	}
	c.instances = append(c.instances, inst)
	return nil
}

// AddRawInstance adds an instance from pre-built variants, bypassing
// encoding. Tests use this to deliver malformed payloads (tag/VT
// mismatches, unknown tags) the engine must reject.
func (c *Class) AddRawInstance(values map[string]*Variant) {
	c.instances = append(c.instances, values)
}

// Connect establishes a session against the in-memory namespace.
func (n *Namespace) Connect() (Session, error) {
	return &memSession{ns: n}, nil
}

type memSession struct {
	ns     *Namespace
	closed bool
}

func (s *memSession) ExecQuery(text string) (Cursor, error) {
	if s.closed {
		return nil, NewQueryError("session closed", nil)
	}
	q, err := wql.Parse(text)
	if err != nil {
		return nil, NewQueryError("invalid query", err)
	}
	c, ok := s.ns.classes[q.Class]
	if !ok {
		return nil, NewQueryError(fmt.Sprintf("class %s not found", q.Class), nil)
	}

	names := q.Properties
	if q.All() {
		names = make([]string, len(c.props))
		for i, p := range c.props {
			names[i] = p.Name
		}
	} else {
		for _, name := range names {
			if _, ok := c.tags[name]; !ok {
				return nil, NewQueryError(fmt.Sprintf("class %s has no property %s", q.Class, name), nil)
			}
		}
	}

	return &memCursor{class: c, names: names}, nil
}

func (s *memSession) Close() error {
	s.closed = true
	return nil
}

type memCursor struct {
	class *Class
	names []string
	next  int
}

func (c *memCursor) Next() (Row, bool, error) {
	if c.next >= len(c.class.instances) {
		return nil, false, nil
	}
	row := &memRow{class: c.class, names: c.names, values: c.class.instances[c.next]}
	c.next++
	return row, true, nil
}

func (c *memCursor) Close() error { return nil }

type memRow struct {
	class  *Class
	names  []string
	values map[string]*Variant
}

func (r *memRow) PropertyNames() ([]string, error) {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names, nil
}

func (r *memRow) Get(name string) (*Variant, cim.Type, error) {
	tag, ok := r.class.tags[name]
	if !ok {
		return nil, 0, NewPropertyError(fmt.Sprintf("class %s has no property %s", r.class.Name, name), nil)
	}
	v, ok := r.values[name]
	if !ok {
		return nil, 0, NewPropertyError(fmt.Sprintf("property %s has no value", name), nil)
	}
	return v, tag, nil
}

func (r *memRow) Close() error { return nil }
