package views

import (
	"bytes"
	"context"
	"html"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

// reBreak matches the line breaks admins type into multi-line fields.
var reBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

// Lines renders admin-edited text with its line breaks and nothing else.
func Lines(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		renderLines(&buf, text)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func lines(text string) template.HTML {
	var buf bytes.Buffer
	renderLines(&buf, text)
	return template.HTML(buf.String())
}

func renderLines(buf *bytes.Buffer, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = reBreak.ReplaceAllString(text, "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			buf.WriteString("<br>")
		}
		buf.WriteString(html.EscapeString(line))
	}
}
