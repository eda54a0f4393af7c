package export

import (
	"bytes"
	"html/template"
	"time"
)

type templateData struct {
	Title        string
	Author       string
	Description  string
	ChapterLabel string
	VerseLabel   string
	GeneratedAt  time.Time
	Chapters     []templateChapter
}

type templateChapter struct {
	Number string
	Verses []templateVerse
}

type templateVerse struct {
	Number       string
	Text         string
	Commentaries []templateCommentary
}

type templateCommentary struct {
	Name        string
	Commentator string
	Text        string
	Children    []templateCommentary
}

var granthaTemplate = template.Must(template.New("grantha").Parse(granthaTemplateHTML))

// renderGranthaHTML renders the printable view of a grantha.
func renderGranthaHTML(data templateData) (string, error) {
	var buf bytes.Buffer
	if err := granthaTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const granthaTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: 'Noto Serif Devanagari', 'Noto Serif', serif; line-height: 1.7; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { text-align: center; border-bottom: 2px solid #7a3b2e; padding-bottom: 0.5rem; }
    .author { text-align: center; color: #555; margin-bottom: 2rem; }
    .description { font-style: italic; color: #444; margin-bottom: 2rem; }
    h2 { color: #7a3b2e; margin-top: 2.5rem; page-break-after: avoid; }
    .verse { margin: 1.5rem 0; page-break-inside: avoid; }
    .verse-number { font-weight: bold; color: #7a3b2e; }
    .verse-text { white-space: pre-wrap; margin: 0.5rem 0; }
    .commentary { background: #faf6f0; border-left: 3px solid #c9a227; padding: 0.75rem 1rem; margin: 0.75rem 0 0.75rem 1rem; }
    .commentary .commentary { margin-left: 1.5rem; }
    .commentary-name { font-weight: bold; }
    .commentator { color: #666; font-size: 0.9em; }
    .commentary-text { white-space: pre-wrap; margin-top: 0.25rem; }
    .footer { margin-top: 3rem; text-align: center; color: #999; font-size: 0.8em; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="author">{{.Author}}</div>
  {{if .Description}}<div class="description">{{.Description}}</div>{{end}}
  {{range .Chapters}}
  <h2>{{$.ChapterLabel}} {{.Number}}</h2>
  {{range .Verses}}
  <div class="verse">
    <div class="verse-number">{{$.VerseLabel}} {{.Number}}</div>
    <div class="verse-text">{{.Text}}</div>
    {{range .Commentaries}}{{template "commentaryNode" .}}{{end}}
  </div>
  {{end}}
  {{end}}
  <div class="footer">{{.GeneratedAt.Format "Jan 2, 2006"}}</div>
</body>
</html>
{{define "commentaryNode"}}
<div class="commentary">
  <div class="commentary-name">{{.Name}}{{if .Commentator}} <span class="commentator">{{.Commentator}}</span>{{end}}</div>
  <div class="commentary-text">{{.Text}}</div>
  {{range .Children}}{{template "commentaryNode" .}}{{end}}
</div>
{{end}}`
