package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// MarkdownRenderer writes the digest as Markdown by converting the HTML page.
type MarkdownRenderer struct {
	html *HTMLRenderer
	conv *converter.Converter
}

// NewMarkdownRenderer creates a Markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		html: NewHTMLRenderer(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Extension returns the file extension of rendered output.
func (m *MarkdownRenderer) Extension() string { return "md" }

// Render writes doc to w.
func (m *MarkdownRenderer) Render(w io.Writer, doc Document) error {
	var buf bytes.Buffer
	if err := m.html.Render(&buf, doc); err != nil {
		return err
	}
	md, err := m.conv.ConvertString(buf.String(), converter.WithDomain(doc.SiteURL))
	if err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	if _, err := io.WriteString(w, md+"\n"); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}
