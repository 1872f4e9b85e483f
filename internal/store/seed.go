package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

// CreateClass declares a class and its properties. Redeclaring an
// existing class is an error; property names must be unique within the
// class (enforced by the primary key).
func (s *Store) CreateClass(ctx context.Context, name string, props ...wbem.PropertyDef) error {
	if len(props) == 0 {
		return fmt.Errorf("create class %s: at least one property is required", name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create class %s: %w", name, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO classes (name) VALUES (?)
		ON CONFLICT(name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("create class %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("class %s already declared", name)
	}

	for ord, p := range props {
		if _, ok := wbem.VarTypeFor(p.Type.Base()); !ok {
			return fmt.Errorf("create class %s, property %s: unsupported tag %s", name, p.Name, p.Type)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO properties (class, name, cim_type, ord)
			VALUES (?, ?, ?, ?)
		`, name, p.Name, uint32(p.Type), ord)
		if err != nil {
			return fmt.Errorf("create class %s, property %s: %w", name, p.Name, err)
		}
	}

	return tx.Commit()
}

// InsertInstance adds an instance from native Go values, encoding each
// into the wire shape its declared tag calls for. Properties left out
// of values are stored as unset and served as the tag's zero variant;
// keys not declared on the class are an error.
//
// Returns the rowid of the new instance.
func (s *Store) InsertInstance(ctx context.Context, class string, values map[string]any) (int64, error) {
	props, err := s.ClassProperties(ctx, class)
	if err != nil {
		return 0, fmt.Errorf("insert instance: %w", err)
	}

	declared := make(map[string]bool, len(props))
	for _, p := range props {
		declared[p.Name] = true
	}
	for name := range values {
		if !declared[name] {
			return 0, fmt.Errorf("insert instance: class %s has no property %s", class, name)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert instance: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO instances (class) VALUES (?)`, class)
	if err != nil {
		return 0, fmt.Errorf("insert instance: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert instance: %w", err)
	}

	for _, p := range props {
		native, present := values[p.Name]
		if !present {
			continue // unset; served back as the zero variant
		}
		variant, err := wbem.NewVariant(p.Type, native)
		if err != nil {
			return 0, fmt.Errorf("insert instance: class %s, property %s: %w", class, p.Name, err)
		}
		if err := writeVariant(ctx, tx, id, p.Name, p.Type, variant); err != nil {
			return 0, fmt.Errorf("insert instance: class %s, property %s: %w", class, p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert instance: %w", err)
	}
	return id, nil
}

// writeVariant persists one encoded value in wire shape.
func writeVariant(ctx context.Context, tx *sql.Tx, id int64, name string, tag cim.Type, v *wbem.Variant) error {
	switch {
	case tag.IsArray() && tag.IsStringFamily():
		count := v.Array.Count()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prop_values (instance_id, name, elem_count)
			VALUES (?, ?, ?)
		`, id, name, count)
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			var data any
			if b := v.Array.Str(i); b != nil {
				// Force a non-nil slice so an empty string stores as an
				// empty blob, not NULL (NULL is the absent handle).
				data = append([]byte{}, b.Bytes()...)
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO prop_elems (instance_id, name, idx, data)
				VALUES (?, ?, ?, ?)
			`, id, name, i, data)
			if err != nil {
				return err
			}
		}
		return nil

	case tag.IsArray():
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prop_values (instance_id, name, data, elem_count)
			VALUES (?, ?, ?, ?)
		`, id, name, v.Array.Raw(), v.Array.Count())
		return err

	case tag.IsStringFamily():
		var data any
		if v.Str != nil {
			data = append([]byte{}, v.Str.Bytes()...)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prop_values (instance_id, name, data)
			VALUES (?, ?, ?)
		`, id, name, data)
		return err

	default:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prop_values (instance_id, name, num)
			VALUES (?, ?, ?)
		`, id, name, int64(v.Bits))
		return err
	}
}
