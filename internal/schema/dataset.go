package schema

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

// Dataset is the YAML instance data fed to a local provider:
//
//	classes:
//	  Win32_Processor:
//	    - Name: node-1
//	      Cores: 8
//	      Tags: [a, b]
type Dataset struct {
	Classes map[string][]map[string]any `yaml:"classes"`
}

// LoadDataset reads and parses a YAML dataset file.
func LoadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return &ds, nil
}

// BuildNamespace assembles an in-memory provider from class definitions
// and an optional dataset. Dataset values are coerced to the exact
// native type each declared tag calls for; instances of undeclared
// classes are an error.
func BuildNamespace(name string, defs []ClassDef, ds *Dataset) (*wbem.Namespace, error) {
	ns := wbem.NewNamespace(name)
	classes := make(map[string]*wbem.Class, len(defs))

	for _, def := range defs {
		cls, err := ns.AddClass(def.Name, def.Properties...)
		if err != nil {
			return nil, err
		}
		classes[def.Name] = cls
	}

	if ds == nil {
		return ns, nil
	}

	for _, def := range defs {
		for i, inst := range ds.Classes[def.Name] {
			values, err := CoerceInstance(def, inst)
			if err != nil {
				return nil, fmt.Errorf("class %s, instance %d: %w", def.Name, i, err)
			}
			if err := classes[def.Name].AddInstance(values); err != nil {
				return nil, fmt.Errorf("class %s, instance %d: %w", def.Name, i, err)
			}
		}
	}
	for name := range ds.Classes {
		if _, ok := classes[name]; !ok {
			return nil, fmt.Errorf("dataset references undeclared class %s", name)
		}
	}
	return ns, nil
}

// CoerceInstance coerces one dataset instance to the native types its
// class declares. Keys not declared on the class are an error; declared
// keys may be absent (the provider delivers the tag's zero value).
func CoerceInstance(def ClassDef, values map[string]any) (map[string]any, error) {
	tags := make(map[string]cim.Type, len(def.Properties))
	for _, p := range def.Properties {
		tags[p.Name] = p.Type
	}

	out := make(map[string]any, len(values))
	for name, raw := range values {
		tag, ok := tags[name]
		if !ok {
			return nil, fmt.Errorf("property %s not declared", name)
		}
		v, err := CoerceValue(tag, raw)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		if v != nil {
			out[name] = v
		}
	}
	return out, nil
}

// CoerceValue converts a YAML-decoded value into the exact native type
// for a tag. YAML integers arrive as int (or uint64 when large), floats
// as float64; the engine's accessors demand exact widths, so the
// narrowing happens here, with range checks.
func CoerceValue(tag cim.Type, raw any) (any, error) {
	if raw == nil {
		// Absent value; the provider substitutes the tag's zero variant.
		return nil, nil
	}

	if tag.IsArray() {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("tag %s wants a list, got %T", tag, raw)
		}
		return coerceSlice(tag.Base(), list)
	}
	return coerceScalar(tag.Base(), raw)
}

func coerceScalar(base cim.Type, raw any) (any, error) {
	if base.IsStringFamily() {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("tag %s wants a string, got %T", base, raw)
		}
		return s, nil
	}

	switch base {
	case cim.TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("tag %s wants a bool, got %T", base, raw)
		}
		return b, nil
	case cim.TypeSInt8:
		n, err := coerceInt(raw, math.MinInt8, math.MaxInt8)
		return int8(n), err
	case cim.TypeUInt8:
		n, err := coerceInt(raw, 0, math.MaxUint8)
		return uint8(n), err
	case cim.TypeSInt16:
		n, err := coerceInt(raw, math.MinInt16, math.MaxInt16)
		return int16(n), err
	case cim.TypeUInt16:
		n, err := coerceInt(raw, 0, math.MaxUint16)
		return uint16(n), err
	case cim.TypeSInt32:
		n, err := coerceInt(raw, math.MinInt32, math.MaxInt32)
		return int32(n), err
	case cim.TypeUInt32:
		n, err := coerceInt(raw, 0, math.MaxUint32)
		return uint32(n), err
	case cim.TypeSInt64:
		n, err := coerceInt(raw, math.MinInt64, math.MaxInt64)
		return n, err
	case cim.TypeUInt64:
		switch n := raw.(type) {
		case int:
			if n < 0 {
				return nil, fmt.Errorf("value %d out of range for uint64", n)
			}
			return uint64(n), nil
		case uint64:
			return n, nil
		default:
			return nil, fmt.Errorf("tag uint64 wants an integer, got %T", raw)
		}
	case cim.TypeReal32:
		f, err := coerceFloat(raw)
		return float32(f), err
	case cim.TypeReal64:
		return coerceFloat(raw)
	case cim.TypeChar16:
		switch c := raw.(type) {
		case int:
			if c < 0 || c > math.MaxUint16 {
				return nil, fmt.Errorf("value %d out of range for char16", c)
			}
			return cim.Char16(c), nil
		case string:
			runes := []rune(c)
			if len(runes) != 1 || runes[0] > math.MaxUint16 {
				return nil, fmt.Errorf("char16 wants a single BMP character, got %q", c)
			}
			return cim.Char16(runes[0]), nil
		default:
			return nil, fmt.Errorf("tag char16 wants an integer or character, got %T", raw)
		}
	}
	return nil, fmt.Errorf("unsupported tag %s", base)
}

func coerceInt(raw any, min, max int64) (int64, error) {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of range", v)
		}
		n = int64(v)
	default:
		return 0, fmt.Errorf("wants an integer, got %T", raw)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, min, max)
	}
	return n, nil
}

func coerceFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("wants a number, got %T", raw)
	}
}

func coerceSlice(base cim.Type, list []any) (any, error) {
	if base.IsStringFamily() {
		out := make([]string, len(list))
		for i, raw := range list {
			v, err := coerceScalar(base, raw)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = v.(string)
		}
		return out, nil
	}

	switch base {
	case cim.TypeBoolean:
		return coerceTyped[bool](base, list)
	case cim.TypeSInt8:
		return coerceTyped[int8](base, list)
	case cim.TypeUInt8:
		return coerceTyped[uint8](base, list)
	case cim.TypeSInt16:
		return coerceTyped[int16](base, list)
	case cim.TypeUInt16:
		return coerceTyped[uint16](base, list)
	case cim.TypeSInt32:
		return coerceTyped[int32](base, list)
	case cim.TypeUInt32:
		return coerceTyped[uint32](base, list)
	case cim.TypeSInt64:
		return coerceTyped[int64](base, list)
	case cim.TypeUInt64:
		return coerceTyped[uint64](base, list)
	case cim.TypeReal32:
		return coerceTyped[float32](base, list)
	case cim.TypeReal64:
		return coerceTyped[float64](base, list)
	case cim.TypeChar16:
		return coerceTyped[cim.Char16](base, list)
	}
	return nil, fmt.Errorf("unsupported tag %s", base)
}

func coerceTyped[T any](base cim.Type, list []any) ([]T, error) {
	out := make([]T, len(list))
	for i, raw := range list {
		v, err := coerceScalar(base, raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v.(T)
	}
	return out, nil
}
