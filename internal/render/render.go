// Package render turns a digest into channel message bodies.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"TenderMonitor/internal/domain"
)

// ExcerptLength is the summary excerpt shown per record in rich layouts.
const ExcerptLength = 100

const (
	highHeading   = "🔶 High potential:"
	normalHeading = "🔹 Other:"
)

// Text renders the chat layout: high-potential records first, one
// "• title → link" line per record. bold wraps section headings.
func Text(d domain.Digest, bold string) string {
	var b strings.Builder
	if len(d.High) > 0 {
		fmt.Fprintf(&b, "%s%s%s\n", bold, highHeading, bold)
		writeLines(&b, d.High)
	}
	if len(d.Normal) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s%s%s\n", bold, normalHeading, bold)
		writeLines(&b, d.Normal)
	}
	return strings.TrimSpace(b.String())
}

func writeLines(b *strings.Builder, records []domain.ClassifiedRecord) {
	for _, rec := range records {
		fmt.Fprintf(b, "• %s → %s\n", rec.Title, rec.Link)
	}
}

// Plain renders the email text alternative, with country and excerpt.
func Plain(d domain.Digest) string {
	var b strings.Builder
	section := func(heading string, records []domain.ClassifiedRecord) {
		if len(records) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(heading + "\n")
		for _, rec := range records {
			fmt.Fprintf(&b, "- [%s] %s\n  %s\n  %s\n", rec.Country, rec.Title, Excerpt(rec.Summary), rec.Link)
		}
	}
	section(highHeading, d.High)
	section(normalHeading, d.Normal)
	return b.String()
}

var htmlTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"excerpt": Excerpt,
}).Parse(`<h3>{{.HighHeading}}</h3>
<ul>
{{- range .High}}
<li><a href="{{.Link}}">{{.Title}}</a> ({{.Country}}) – {{excerpt .Summary}}</li>
{{- end}}
</ul>
<h3>{{.NormalHeading}}</h3>
<ul>
{{- range .Normal}}
<li><a href="{{.Link}}">{{.Title}}</a> ({{.Country}}) – {{excerpt .Summary}}</li>
{{- end}}
</ul>
`))

// HTML renders the email body. Field values are escaped.
func HTML(d domain.Digest) (string, error) {
	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		HighHeading   string
		NormalHeading string
		High          []domain.ClassifiedRecord
		Normal        []domain.ClassifiedRecord
	}{highHeading, normalHeading, d.High, d.Normal})
	if err != nil {
		return "", fmt.Errorf("render html digest: %w", err)
	}
	return buf.String(), nil
}

// Excerpt shortens a summary for list layouts.
func Excerpt(summary string) string {
	if utf8.RuneCountInString(summary) <= ExcerptLength {
		return summary
	}
	return domain.Truncate(summary, ExcerptLength) + "..."
}

// Chunk splits text into pieces of at most limit runes, breaking on line
// boundaries where possible. A non-positive limit returns the text whole.
func Chunk(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if size > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if size+n <= limit {
			current.WriteString(line)
			size += n
			continue
		}
		flush()

		// An overlong line is split without its newline so the break never
		// becomes a chunk of its own.
		body := strings.TrimSuffix(line, "\n")
		runes := []rune(body)
		for len(runes) > limit {
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		current.WriteString(string(runes))
		size = len(runes)
		if len(body) < len(line) {
			current.WriteString("\n")
			size++
		}
	}
	flush()

	out := chunks[:0]
	for _, chunk := range chunks {
		if chunk = strings.TrimRight(chunk, "\n"); chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}
