package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsift/internal/usecase/listing"
)

// filterOptions are the engine settings the report command applies.
type filterOptions struct {
	facets        []string // field=value
	keywords      []string
	titleKeywords []string
	sortBy        string
	ascending     bool
	dateField     string
	limit         int // < 0 = no cap
}

func reportCommand(c *cli.Context) error {
	comp, err := setup(c)
	if err != nil {
		return err
	}
	defer comp.close()

	writer, err := comp.reportWriter(c.String("format"))
	if err != nil {
		return err
	}

	e, err := comp.loadEngine(c.Context)
	if err != nil {
		return fmt.Errorf("load postings: %w", err)
	}

	opts := filterOptions{
		facets:        c.StringSlice("facet"),
		keywords:      c.StringSlice("keyword"),
		titleKeywords: c.StringSlice("title-keyword"),
		sortBy:        c.String("sort"),
		ascending:     c.Bool("ascending"),
		dateField:     comp.cfg.Report.DateField,
		limit:         c.Int("limit"),
	}
	if err := applyFilters(e, opts); err != nil {
		return err
	}

	view := e.FilteredView()
	path, err := writer.Write(c.Context, view)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	comp.logger.Info("Report written",
		zap.String("path", path),
		zap.Int("records", len(view)),
		zap.Int("total", len(e.AllRecords())),
	)
	fmt.Fprintln(c.App.Writer, path)
	return nil
}

// parseFacetSelection splits a field=value flag.
func parseFacetSelection(s string) (field, value string, err error) {
	field, value, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", "", fmt.Errorf("facet %q: want field=value", s)
	}
	return field, value, nil
}

func applyFilters(e *listing.Engine, opts filterOptions) error {
	for _, sel := range opts.facets {
		field, value, err := parseFacetSelection(sel)
		if err != nil {
			return err
		}
		f, ok := e.Facets().Facet(field)
		if !ok {
			return fmt.Errorf("facet %q: no such field", field)
		}
		o, ok := f.OptionByValue(value)
		if !ok {
			return fmt.Errorf("facet %q: no option %q", field, value)
		}
		e.SelectOption(field, o.ID)
	}

	for _, p := range opts.keywords {
		if _, err := e.AddKeyword(p, false, false); err != nil {
			return err
		}
	}
	for _, p := range opts.titleKeywords {
		if _, err := e.AddKeyword(p, true, false); err != nil {
			return err
		}
	}

	if opts.sortBy != "" {
		key, err := listing.ParseSortKey(opts.sortBy)
		if err != nil {
			return err
		}
		if _, err := e.Sort(key, opts.ascending, opts.dateField); err != nil {
			return err
		}
	}

	if opts.limit >= 0 {
		if _, err := e.SetLimit(opts.limit); err != nil {
			return err
		}
	}
	return nil
}
