package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/therealcain/SimplerWMI/internal/schema"
	"github.com/therealcain/SimplerWMI/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database  string
	SchemaDir string
	DataFile  string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed a SQLite database from a schema and dataset",
		Long: `Create class declarations and instances in a SQLite database from
CUE class definitions and a YAML dataset. The database file is created
if it does not exist.

Example:
  wmiq seed --db ./wmi.db --schema ./schema --data ./data.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.SchemaDir, "schema", "", "directory of CUE class definitions (required)")
	cmd.Flags().StringVar(&opts.DataFile, "data", "", "YAML dataset file")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	defs, err := schema.LoadClasses(opts.SchemaDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load class definitions", err)
	}

	var ds *schema.Dataset
	if opts.DataFile != "" {
		ds, err = schema.LoadDataset(opts.DataFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load dataset", err)
		}
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	instances := 0
	for _, def := range defs {
		f.VerboseLog("declaring class %s (%d properties)", def.Name, len(def.Properties))
		if err := st.CreateClass(ctx, def.Name, def.Properties...); err != nil {
			return WrapExitError(ExitFailure, "failed to declare class", err)
		}
		if ds == nil {
			continue
		}
		for i, inst := range ds.Classes[def.Name] {
			values, err := schema.CoerceInstance(def, inst)
			if err != nil {
				return WrapExitError(ExitFailure,
					fmt.Sprintf("class %s, instance %d", def.Name, i), err)
			}
			if _, err := st.InsertInstance(ctx, def.Name, values); err != nil {
				return WrapExitError(ExitFailure,
					fmt.Sprintf("class %s, instance %d", def.Name, i), err)
			}
			instances++
		}
	}

	if ds != nil {
		declared := make(map[string]bool, len(defs))
		for _, def := range defs {
			declared[def.Name] = true
		}
		for name := range ds.Classes {
			if !declared[name] {
				return WrapExitError(ExitFailure,
					fmt.Sprintf("dataset references undeclared class %s", name), nil)
			}
		}
	}

	summary := map[string]any{
		"classes":   len(defs),
		"instances": instances,
	}
	if opts.Format == "json" {
		return f.JSON(summary)
	}
	fmt.Fprintf(f.Writer, "seeded %d class(es), %d instance(s)\n", len(defs), instances)
	return nil
}
