package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solrq/solrq/internal/schema"
	"github.com/solrq/solrq/lucene"
)

// checkResult holds the outcome of validating one query string.
type checkResult struct {
	Valid     bool   `json:"valid"`
	Canonical string `json:"canonical,omitempty"`
	Error     string `json:"error,omitempty"`
	Field     string `json:"field,omitempty"`
}

// errQueryInvalid signals a failed check after the result has been printed,
// so the process exits non-zero without a second error message.
var errQueryInvalid = errors.New("query is not valid")

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		schemaPath string
		collection string
	)

	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: "Validate and canonicalize a query string",
		Long: `Parse a Lucene-style query and print its canonical form.

With --schema and --collection, field names are additionally checked against
the collection's allow list and rewritten to their backend names, exactly as
the gateway would do.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], schemaPath, collection, cmd)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to the collection schema YAML")
	cmd.Flags().StringVar(&collection, "collection", "", "collection whose field rules apply")

	return cmd
}

func runCheck(opts *RootOptions, query, schemaPath, collection string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var (
		fields map[string]string
		raw    map[string]struct{}
	)
	if schemaPath != "" {
		if collection == "" {
			return errors.New("--collection is required when --schema is set")
		}
		sch, err := schema.Load(schemaPath)
		if err != nil {
			return err
		}
		var ok bool
		fields, raw, ok = sch.Collection(collection)
		if !ok {
			return fmt.Errorf("unknown collection %q in %s", collection, schemaPath)
		}
		formatter.VerboseLog("checking against collection %q (%d aliases, %d raw fields)",
			collection, len(fields), len(raw))
	}

	canonical, err := lucene.ParseWithFieldReplacements(query, fields, raw)
	res := checkResult{Valid: err == nil, Canonical: canonical}
	if err != nil {
		res.Error = err.Error()
		var emptyErr *lucene.EmptyFieldQueryError
		var notFoundErr *lucene.FieldNotFoundError
		switch {
		case errors.As(err, &emptyErr):
			res.Field = emptyErr.Field
		case errors.As(err, &notFoundErr):
			res.Field = notFoundErr.Field
		}
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(res); err != nil {
			return err
		}
	} else if res.Valid {
		formatter.Textf("%s", res.Canonical)
	} else {
		formatter.Textf("invalid: %s", res.Error)
	}

	if !res.Valid {
		return errQueryInvalid
	}
	return nil
}
