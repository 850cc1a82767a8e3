package report

import (
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
)

// Field names shown in the digest tables.
const (
	FieldPostedOn = "postedOn"
	FieldLocation = "locationsText"
	FieldTimeType = "timeType"
)

const dateLayout = "2006-01-02"

// Document is the input of a renderer.
type Document struct {
	Generated    time.Time
	Since        time.Time // zero when there is no previous run
	Fresh        []*record.Record
	Older        []*record.Record
	SiteURL      string
	Descriptions bool
}

// row is one table line as the templates see it.
type row struct {
	Title       string
	URL         string
	PostedOn    string
	Location    string
	JobType     string
	Description template.HTML
}

// section is one captioned table.
type section struct {
	Caption string
	Rows    []row
}

type view struct {
	Title        string
	Since        string
	Sections     []section
	Descriptions bool
}

func (d Document) view(policy *bluemonday.Policy) view {
	today := d.Generated.Format(dateLayout)
	since := ""
	if !d.Since.IsZero() {
		since = d.Since.Format(dateLayout)
	}
	return view{
		Title: "Jobs --- " + today,
		Since: since,
		Sections: []section{
			{Caption: "New Jobs --- " + today, Rows: rows(d.Fresh, d.SiteURL, d.Descriptions, policy)},
			{Caption: "Older Jobs --- " + today, Rows: rows(d.Older, d.SiteURL, d.Descriptions, policy)},
		},
		Descriptions: d.Descriptions,
	}
}

func rows(recs []*record.Record, siteURL string, descriptions bool, policy *bluemonday.Policy) []row {
	out := make([]row, len(recs))
	for i, r := range recs {
		out[i] = row{
			Title:    r.Title(),
			URL:      r.PageURL(siteURL),
			PostedOn: r.Value(FieldPostedOn),
			Location: r.Value(FieldLocation),
			JobType:  r.Value(FieldTimeType),
		}
		if descriptions {
			out[i].Description = template.HTML(policy.Sanitize(r.Body())) //nolint:gosec // sanitized above
		}
	}
	return out
}
