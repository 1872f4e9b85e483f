package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/therealcain/SimplerWMI/internal/schema"
	"github.com/therealcain/SimplerWMI/internal/store"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

// SourceOptions selects where class data comes from: a seeded SQLite
// database, or CUE class definitions with an optional YAML dataset.
type SourceOptions struct {
	Database  string
	SchemaDir string
	DataFile  string
}

// AddSourceFlags registers the shared data-source flags on a command.
func AddSourceFlags(cmd *cobra.Command, opts *SourceOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to seeded SQLite database")
	cmd.Flags().StringVar(&opts.SchemaDir, "schema", "", "directory of CUE class definitions")
	cmd.Flags().StringVar(&opts.DataFile, "data", "", "YAML dataset file (requires --schema)")
}

// OpenSession builds a session from the selected source. The returned
// cleanup function releases whatever the source holds open and must be
// called even when the session is closed separately.
func (o *SourceOptions) OpenSession() (wbem.Session, func(), error) {
	switch {
	case o.Database != "" && o.SchemaDir != "":
		return nil, nil, WrapExitError(ExitCommandError, "--db and --schema are mutually exclusive", nil)

	case o.Database != "":
		st, err := store.Open(o.Database)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		sess, err := st.Connect()
		if err != nil {
			st.Close()
			return nil, nil, WrapExitError(ExitCommandError, "failed to connect", err)
		}
		return sess, func() { st.Close() }, nil

	case o.SchemaDir != "":
		ns, err := o.buildNamespace()
		if err != nil {
			return nil, nil, err
		}
		sess, err := ns.Connect()
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to connect", err)
		}
		return sess, func() {}, nil

	default:
		return nil, nil, WrapExitError(ExitCommandError, "either --db or --schema is required", nil)
	}
}

func (o *SourceOptions) buildNamespace() (*wbem.Namespace, error) {
	defs, err := schema.LoadClasses(o.SchemaDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load class definitions", err)
	}

	var ds *schema.Dataset
	if o.DataFile != "" {
		ds, err = schema.LoadDataset(o.DataFile)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load dataset", err)
		}
	}

	ns, err := schema.BuildNamespace("", defs, ds)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build namespace", err)
	}
	return ns, nil
}

// loadDefs loads class definitions for sources that only need the
// declarations, not a live session.
func (o *SourceOptions) loadDefs() ([]schema.ClassDef, error) {
	if o.SchemaDir == "" {
		return nil, fmt.Errorf("no schema directory")
	}
	defs, err := schema.LoadClasses(o.SchemaDir)
	if err != nil {
		return nil, err
	}
	return defs, nil
}
