package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; vertical-align: top; }
caption { font-weight: bold; text-align: left; padding: 4px 0; }
</style>
</head>
<body>
{{- if .Since}}
<p>Previous run: {{.Since}}</p>
{{- end}}
{{- range .Sections}}
<table>
<caption>{{.Caption}}</caption>
<thead>
<tr><th>Job Title</th><th>Posted On</th><th>Job Location</th><th>Job Type</th>{{if $.Descriptions}}<th>Description</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr><td><a href="{{.URL}}">{{.Title}}</a></td><td>{{.PostedOn}}</td><td>{{.Location}}</td><td>{{.JobType}}</td>{{if $.Descriptions}}<td>{{.Description}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</body>
</html>
`))

// HTMLRenderer writes the digest as an HTML page with one table per section.
type HTMLRenderer struct {
	policy *bluemonday.Policy
}

// NewHTMLRenderer creates a renderer that sanitizes descriptions with the UGC policy.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{policy: bluemonday.UGCPolicy()}
}

// Extension returns the file extension of rendered output.
func (h *HTMLRenderer) Extension() string { return "html" }

// Render writes doc to w.
func (h *HTMLRenderer) Render(w io.Writer, doc Document) error {
	if err := pageTemplate.Execute(w, doc.view(h.policy)); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
