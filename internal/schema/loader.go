package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

// ClassDef is one class declaration: its name and its properties in
// declaration order.
type ClassDef struct {
	Name       string
	Properties []wbem.PropertyDef
}

// LoadError represents an error that occurred during schema loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants shared by schema loading.
const (
	ErrCodeNotFound    = "S001" // Path not found
	ErrCodeNoFiles     = "S002" // No CUE files found
	ErrCodeLoadFailed  = "S003" // CUE load failed
	ErrCodeBuildFailed = "S004" // CUE build failed
	ErrCodeBadClass    = "S005" // Class declaration malformed
	ErrCodeBadType     = "S006" // Unknown property type name
)

// LoadClasses loads every class declared by the CUE files in dir.
// Schema files declare classes under the top-level "class" field:
//
//	class: Win32_Processor: properties: [
//		{name: "Name", type: "string"},
//		{name: "Cores", type: "uint32"},
//	]
//
// Type names are the canonical cim spellings, with "[]" for arrays.
func LoadClasses(dir string) ([]ClassDef, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	classesVal := value.LookupPath(cue.ParsePath("class"))
	if !classesVal.Exists() {
		return nil, &LoadError{Code: ErrCodeBadClass, Message: "no class declarations found"}
	}

	iter, err := classesVal.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBadClass, Message: fmt.Sprintf("iterating classes: %v", err)}
	}

	var defs []ClassDef
	for iter.Next() {
		def, err := compileClass(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	if len(defs) == 0 {
		return nil, &LoadError{Code: ErrCodeBadClass, Message: "no class declarations found"}
	}
	return defs, nil
}

// compileClass parses one class struct into a ClassDef, validating every
// property type name against the supported tag set.
func compileClass(name string, v cue.Value) (*ClassDef, error) {
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBadClass, Message: err.Error(), Pos: v.Pos()}
	}

	def := &ClassDef{Name: name}

	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return nil, &LoadError{
			Code:    ErrCodeBadClass,
			Message: fmt.Sprintf("class %s: properties is required", name),
			Pos:     v.Pos(),
		}
	}

	propIter, err := propsVal.List()
	if err != nil {
		return nil, &LoadError{
			Code:    ErrCodeBadClass,
			Message: fmt.Sprintf("class %s: properties must be a list: %v", name, err),
			Pos:     propsVal.Pos(),
		}
	}

	seen := make(map[string]bool)
	for propIter.Next() {
		pv := propIter.Value()

		pname, err := stringField(pv, "name")
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadClass, Message: fmt.Sprintf("class %s: %v", name, err), Pos: pv.Pos()}
		}
		tname, err := stringField(pv, "type")
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadClass, Message: fmt.Sprintf("class %s, property %s: %v", name, pname, err), Pos: pv.Pos()}
		}

		tag, err := cim.ParseType(tname)
		if err != nil {
			return nil, &LoadError{
				Code:    ErrCodeBadType,
				Message: fmt.Sprintf("class %s, property %s: %v", name, pname, err),
				Pos:     pv.Pos(),
			}
		}
		if seen[pname] {
			return nil, &LoadError{
				Code:    ErrCodeBadClass,
				Message: fmt.Sprintf("class %s: duplicate property %s", name, pname),
				Pos:     pv.Pos(),
			}
		}
		seen[pname] = true
		def.Properties = append(def.Properties, wbem.PropertyDef{Name: pname, Type: tag})
	}

	if len(def.Properties) == 0 {
		return nil, &LoadError{
			Code:    ErrCodeBadClass,
			Message: fmt.Sprintf("class %s: at least one property is required", name),
			Pos:     v.Pos(),
		}
	}
	return def, nil
}

func stringField(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", fmt.Errorf("%s is required", field)
	}
	s, err := fv.String()
	if err != nil {
		return "", fmt.Errorf("%s must be a string: %v", field, err)
	}
	return s, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
