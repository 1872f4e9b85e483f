package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
	"github.com/therealcain/SimplerWMI/internal/wql"
)

// Connect establishes a session against the stored namespace.
func (s *Store) Connect() (wbem.Session, error) {
	if err := s.db.Ping(); err != nil {
		return nil, wbem.NewConnectionError("database unreachable", err)
	}
	return &sqlSession{store: s}, nil
}

type sqlSession struct {
	store  *Store
	closed bool
}

func (s *sqlSession) ExecQuery(text string) (wbem.Cursor, error) {
	if s.closed {
		return nil, wbem.NewQueryError("session closed", nil)
	}
	q, err := wql.Parse(text)
	if err != nil {
		return nil, wbem.NewQueryError("invalid query", err)
	}

	ctx := context.Background()
	props, err := s.store.ClassProperties(ctx, q.Class)
	if err != nil {
		return nil, wbem.NewQueryError(fmt.Sprintf("class %s not found", q.Class), err)
	}
	tags := make(map[string]cim.Type, len(props))
	for _, p := range props {
		tags[p.Name] = p.Type
	}

	names := q.Properties
	if q.All() {
		names = make([]string, len(props))
		for i, p := range props {
			names[i] = p.Name
		}
	} else {
		for _, name := range names {
			if _, ok := tags[name]; !ok {
				return nil, wbem.NewQueryError(fmt.Sprintf("class %s has no property %s", q.Class, name), nil)
			}
		}
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id FROM instances WHERE class = ? ORDER BY id
	`, q.Class)
	if err != nil {
		return nil, wbem.NewQueryError("query instances", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wbem.NewQueryError("query instances", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wbem.NewQueryError("query instances", err)
	}

	return &sqlCursor{store: s.store, ids: ids, names: names, tags: tags}, nil
}

func (s *sqlSession) Close() error {
	s.closed = true
	return nil
}

type sqlCursor struct {
	store *Store
	ids   []int64
	names []string
	tags  map[string]cim.Type
	next  int
}

func (c *sqlCursor) Next() (wbem.Row, bool, error) {
	if c.next >= len(c.ids) {
		return nil, false, nil
	}
	row := &sqlRow{store: c.store, id: c.ids[c.next], names: c.names, tags: c.tags}
	c.next++
	return row, true, nil
}

func (c *sqlCursor) Close() error { return nil }

type sqlRow struct {
	store *Store
	id    int64
	names []string
	tags  map[string]cim.Type
}

func (r *sqlRow) PropertyNames() ([]string, error) {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names, nil
}

// Get rebuilds the stored wire-shape value as the variant a live service
// would deliver. A declared property with no stored row was never set
// and comes back as the tag's zero variant.
func (r *sqlRow) Get(name string) (*wbem.Variant, cim.Type, error) {
	tag, ok := r.tags[name]
	if !ok {
		return nil, 0, wbem.NewPropertyError(fmt.Sprintf("no property %s", name), nil)
	}

	ctx := context.Background()
	var num sql.Null[int64]
	var data sql.Null[[]byte]
	var count sql.Null[int64]
	err := r.store.db.QueryRowContext(ctx, `
		SELECT num, data, elem_count FROM prop_values
		WHERE instance_id = ? AND name = ?
	`, r.id, name).Scan(&num, &data, &count)
	if errors.Is(err, sql.ErrNoRows) {
		v, zerr := wbem.ZeroVariant(tag)
		if zerr != nil {
			return nil, 0, wbem.NewPropertyError(fmt.Sprintf("property %s", name), zerr)
		}
		return v, tag, nil
	}
	if err != nil {
		return nil, 0, wbem.NewPropertyError(fmt.Sprintf("read property %s", name), err)
	}

	vt, ok := wbem.VarTypeFor(tag.Base())
	if !ok {
		return nil, 0, wbem.NewPropertyError(fmt.Sprintf("property %s has unsupported tag %s", name, tag), nil)
	}

	switch {
	case tag.IsArray() && tag.IsStringFamily():
		strs, err := r.readStringSlots(ctx, name, int(count.V))
		if err != nil {
			return nil, 0, wbem.NewPropertyError(fmt.Sprintf("read property %s", name), err)
		}
		return &wbem.Variant{VT: vt | wbem.VTArray, Array: wbem.NewStringSafeArray(strs)}, tag, nil

	case tag.IsArray():
		sa := wbem.NewFixedSafeArray(data.V, int(count.V))
		return &wbem.Variant{VT: vt | wbem.VTArray, Array: sa}, tag, nil

	case tag.IsStringFamily():
		v := &wbem.Variant{VT: vt}
		if data.Valid {
			v.Str = wbem.BStrFromBytes(data.V)
		}
		return v, tag, nil

	default:
		return &wbem.Variant{VT: vt, Bits: uint64(num.V)}, tag, nil
	}
}

func (r *sqlRow) readStringSlots(ctx context.Context, name string, count int) ([]*wbem.BStr, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT idx, data FROM prop_elems
		WHERE instance_id = ? AND name = ?
		ORDER BY idx
	`, r.id, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	strs := make([]*wbem.BStr, count)
	for rows.Next() {
		var idx int
		var data sql.Null[[]byte]
		if err := rows.Scan(&idx, &data); err != nil {
			return nil, err
		}
		if idx < 0 || idx >= count {
			return nil, fmt.Errorf("element index %d outside [0, %d)", idx, count)
		}
		if data.Valid {
			strs[idx] = wbem.BStrFromBytes(data.V)
		}
	}
	return strs, rows.Err()
}

func (r *sqlRow) Close() error { return nil }
