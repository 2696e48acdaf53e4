package email

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Placing is one podium line in a results announcement.
type Placing struct {
	Position int
	Uploader string
	Score    int
}

// Announcement tells subscribers that a contest year's results are public.
type Announcement struct {
	Year       int
	Podium     []Placing
	ResultsURL string
	Note       string // optional markdown appended after the podium
}

// Raw HTML in the note is escaped because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Message renders the announcement for the given recipients.
// POST: one Message addressed to all of to, HTML rendered from markdown
func (a Announcement) Message(to []string) (Message, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# Results %d\n\n", a.Year)
	if len(a.Podium) == 0 {
		md.WriteString("No photo received a vote this year.\n\n")
	}
	for _, p := range a.Podium {
		uploader := p.Uploader
		if uploader == "" {
			uploader = "anonymous"
		}
		fmt.Fprintf(&md, "%d. **%s** with %d points\n", p.Position, escapeMarkdown(uploader), p.Score)
	}
	if a.ResultsURL != "" {
		fmt.Fprintf(&md, "\n[See all results](%s)\n", a.ResultsURL)
	}
	if a.Note != "" {
		md.WriteString("\n" + a.Note + "\n")
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md.String()), &buf); err != nil {
		return Message{}, fmt.Errorf("render announcement: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Photo contest %d: the results are in", a.Year),
		HTML:    buf.String(),
	}, nil
}

var markdownEscaper = strings.NewReplacer(`*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`, `<`, `&lt;`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
