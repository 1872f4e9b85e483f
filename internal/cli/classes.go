package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/therealcain/SimplerWMI/internal/store"
	"github.com/therealcain/SimplerWMI/internal/wbem"
)

// ClassesOptions holds flags for the classes command.
type ClassesOptions struct {
	*RootOptions
	Source SourceOptions
}

// NewClassesCommand creates the classes command.
func NewClassesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List declared classes and their properties",
		Long: `List every declared class with its properties and type tags,
from either a seeded database or a CUE schema directory.

Example:
  wmiq classes --schema ./schema
  wmiq classes --db ./wmi.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses(opts, cmd)
		},
	}

	AddSourceFlags(cmd, &opts.Source)
	return cmd
}

// classInfo is the JSON shape of one class listing.
type classInfo struct {
	Name       string         `json:"name"`
	Properties []propertyInfo `json:"properties"`
}

type propertyInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func runClasses(opts *ClassesOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	infos, err := listClasses(&opts.Source)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return f.JSON(map[string]any{"classes": infos})
	}

	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(f.Writer)
		}
		fmt.Fprintf(f.Writer, "%s\n", info.Name)
		for _, p := range info.Properties {
			fmt.Fprintf(f.Writer, "  %s %s\n", p.Type, p.Name)
		}
	}
	return nil
}

func listClasses(src *SourceOptions) ([]classInfo, error) {
	switch {
	case src.Database != "" && src.SchemaDir != "":
		return nil, WrapExitError(ExitCommandError, "--db and --schema are mutually exclusive", nil)

	case src.Database != "":
		st, err := store.Open(src.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		ctx := context.Background()
		names, err := st.Classes(ctx)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to list classes", err)
		}
		infos := make([]classInfo, 0, len(names))
		for _, name := range names {
			props, err := st.ClassProperties(ctx, name)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, "failed to list properties", err)
			}
			infos = append(infos, makeClassInfo(name, props))
		}
		return infos, nil

	case src.SchemaDir != "":
		defs, err := src.loadDefs()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load class definitions", err)
		}
		infos := make([]classInfo, 0, len(defs))
		for _, def := range defs {
			infos = append(infos, makeClassInfo(def.Name, def.Properties))
		}
		return infos, nil

	default:
		return nil, WrapExitError(ExitCommandError, "either --db or --schema is required", nil)
	}
}

func makeClassInfo(name string, props []wbem.PropertyDef) classInfo {
	info := classInfo{Name: name, Properties: make([]propertyInfo, len(props))}
	for i, p := range props {
		info.Properties[i] = propertyInfo{Name: p.Name, Type: p.Type.String()}
	}
	return info
}
