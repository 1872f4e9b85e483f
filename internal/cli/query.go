package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/therealcain/SimplerWMI/internal/cim"
	"github.com/therealcain/SimplerWMI/internal/wbem"
	"github.com/therealcain/SimplerWMI/internal/wmi"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Source SourceOptions
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <class> [property...]",
		Short: "Query class instances",
		Long: `Query instances of a class, converting every property through the
typed engine. With no properties listed, all declared properties are
returned in declaration order.

Example:
  wmiq query --schema ./schema --data ./data.yaml Win32_Processor
  wmiq query --db ./wmi.db Win32_Processor Name Cores`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd, args[0], args[1:])
		},
	}

	AddSourceFlags(cmd, &opts.Source)
	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command, class string, properties []string) error {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sess, cleanup, err := opts.Source.OpenSession()
	if err != nil {
		return err
	}
	defer cleanup()

	client := wmi.NewClient(sess, wmi.WithLogger(log))
	defer client.Close()

	objs, err := client.Query(class, properties...)
	if err != nil {
		code := "QUERY_FAILED"
		if se, ok := wbem.IsServiceError(err); ok {
			code = string(se.Code)
		} else if ce, ok := cim.IsConversionError(err); ok {
			code = string(ce.Code)
		}
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "query failed", err)
	}

	if opts.Format == "json" {
		return f.JSON(queryPayload(class, objs))
	}
	renderObjects(f, class, objs)
	return nil
}

// queryPayload converts a result set to its JSON shape: one map of
// native values per instance, property order carried separately since
// JSON objects do not preserve it.
func queryPayload(class string, objs wmi.ObjectSet) map[string]any {
	instances := make([]map[string]any, len(objs))
	var order []string
	for i, obj := range objs {
		if order == nil {
			order = obj.Names()
		}
		m := make(map[string]any, obj.Len())
		for _, name := range obj.Names() {
			if v, ok := obj.Value(name); ok {
				m[name] = cim.Native(v)
			}
		}
		instances[i] = m
	}
	payload := map[string]any{
		"class":     class,
		"instances": instances,
	}
	if order != nil {
		payload["properties"] = order
	}
	return payload
}

func renderObjects(f *OutputFormatter, class string, objs wmi.ObjectSet) {
	fmt.Fprintf(f.Writer, "%s: %d instance(s)\n", class, len(objs))
	for i, obj := range objs {
		names := obj.Names()
		width := 0
		for _, name := range names {
			if len(name) > width {
				width = len(name)
			}
		}
		fmt.Fprintf(f.Writer, "\n[%d]\n", i)
		for _, name := range names {
			v, ok := obj.Value(name)
			if !ok {
				continue
			}
			fmt.Fprintf(f.Writer, "  %-*s = %s\n", width, name, formatNative(cim.Native(v)))
		}
	}
}

// formatNative renders one native value for text output. Strings are
// quoted so empty and whitespace values stay visible.
func formatNative(v any) string {
	switch n := v.(type) {
	case string:
		return fmt.Sprintf("%q", n)
	case []string:
		parts := make([]string, len(n))
		for i, s := range n {
			parts[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		s := fmt.Sprintf("%v", v)
		// Slices print Go-style; swap the space separator for commas
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			return "[" + strings.Join(strings.Fields(s[1:len(s)-1]), ", ") + "]"
		}
		return s
	}
}
