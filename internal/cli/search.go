package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/solrq/solrq"
	"github.com/solrq/solrq/internal/schema"
	"github.com/solrq/solrq/lucene"
)

// searchOptions holds the flags of the search command.
type searchOptions struct {
	url        string
	handler    string
	schemaPath string
	collection string
	filter     []string
	fields     []string
	sort       string
	limit      int
	offset     int
	timeout    time.Duration
	cursor     bool
}

// searchOutput is the JSON shape of a one-shot search.
type searchOutput struct {
	Hits  int              `json:"hits"`
	QTime int              `json:"qtime"`
	Docs  []solrq.Document `json:"docs"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a query against a Solr core",
		Long: `Sanitize a query and send it to a Solr core's JSON Request API.

With --cursor the command pages through the complete result set using
cursorMark pagination instead of a single bounded response.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "Solr core URL, e.g. http://localhost:8983/solr/sources")
	cmd.Flags().StringVar(&opts.handler, "handler", "", "request handler (default /select)")
	cmd.Flags().StringVar(&opts.schemaPath, "schema", "", "path to the collection schema YAML")
	cmd.Flags().StringVar(&opts.collection, "collection", "", "collection whose field rules apply")
	cmd.Flags().StringArrayVar(&opts.filter, "filter", nil, "filter query (repeatable)")
	cmd.Flags().StringSliceVar(&opts.fields, "fields", nil, "fields to return")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort clause, e.g. \"year_i asc\"")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "maximum rows to return")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "result offset")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().BoolVar(&opts.cursor, "cursor", false, "stream all matches via cursorMark pagination")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runSearch(rootOpts *RootOptions, opts *searchOptions, query string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	var (
		fields map[string]string
		raw    map[string]struct{}
	)
	if opts.schemaPath != "" {
		if opts.collection == "" {
			return errors.New("--collection is required when --schema is set")
		}
		sch, err := schema.Load(opts.schemaPath)
		if err != nil {
			return err
		}
		var ok bool
		fields, raw, ok = sch.Collection(opts.collection)
		if !ok {
			return fmt.Errorf("unknown collection %q in %s", opts.collection, opts.schemaPath)
		}
	}

	sanitized, err := lucene.ParseWithFieldReplacements(query, fields, raw)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	filters := make([]string, 0, len(opts.filter))
	for _, f := range opts.filter {
		sf, err := lucene.ParseWithFieldReplacements(f, fields, raw)
		if err != nil {
			return fmt.Errorf("invalid filter %q: %w", f, err)
		}
		filters = append(filters, sf)
	}
	formatter.VerboseLog("query: %s", sanitized)

	client, err := solrq.New(opts.url, solrq.WithTimeout(opts.timeout))
	if err != nil {
		return err
	}

	req := &solrq.JSONRequest{
		Query:  sanitized,
		Filter: filters,
		Fields: opts.fields,
		Sort:   opts.sort,
		Limit:  opts.limit,
		Offset: opts.offset,
	}

	ctx := cmd.Context()
	if opts.cursor {
		return streamAll(ctx, client, req, opts.handler, formatter)
	}

	var results *solrq.Results
	if opts.handler != "" {
		results, err = client.Search(ctx, req, opts.handler)
	} else {
		results, err = client.Search(ctx, req)
	}
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.JSON(searchOutput{Hits: results.Hits, QTime: results.QTime, Docs: results.Docs})
	}
	formatter.Textf("%d hits (%d ms)", results.Hits, results.QTime)
	for _, doc := range results.Docs {
		if err := formatter.JSON(doc); err != nil {
			return err
		}
	}
	return nil
}

// streamAll pages through every match and prints one document at a time, so
// arbitrarily large result sets never accumulate in memory.
func streamAll(
	ctx context.Context, client *solrq.Client,
	req *solrq.JSONRequest, handler string, formatter *OutputFormatter,
) error {
	var (
		cur *solrq.Cursor
		err error
	)
	if handler != "" {
		cur, err = client.SearchAll(ctx, req, handler)
	} else {
		cur, err = client.SearchAll(ctx, req)
	}
	if err != nil {
		return err
	}
	formatter.VerboseLog("%d total hits", cur.Hits())

	n := 0
	for cur.Next(ctx) {
		if err := formatter.JSON(cur.Doc()); err != nil {
			return err
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if formatter.Format != "json" {
		formatter.Textf("%d documents", n)
	}
	return nil
}
