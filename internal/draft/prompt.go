// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/recsheet/pkg/types"
)

// systemPrompt is sent as the system instruction to both backends.
const systemPrompt = "You are a helpful assistant that converts text to markdown tables."

// draftPromptTmpl asks the model to lay the PDF text out as one Markdown
// pipe table using the recording-sheet column names.
var draftPromptTmpl = template.Must(template.New("draft").Parse(`以下のテキストをマークダウン形式のテーブルに変換してください。

Rules:
- Output exactly one Markdown pipe table and nothing else.
- Use these column names in the header row, in this order: {{range $i, $c := .Columns}}{{if $i}}, {{end}}{{$c}}{{end}}.
- Copy cell values verbatim from the text. Leave a cell empty when the text has no value for it.
- Do not merge, split, or summarize rows.

Text:
{{.Text}}
`))

// promptColumns lists the source column names of p plus a remarks column.
func promptColumns(p types.ColumnProfile) []string {
	cols := make([]string, 0, len(p.Required)+1)
	for _, rc := range p.Required {
		cols = append(cols, rc.Source)
	}
	if p.RemarksSubstring != "" {
		cols = append(cols, p.RemarksSubstring)
	}
	return cols
}

// renderPrompt executes the draft prompt template for text.
func renderPrompt(text string, p types.ColumnProfile) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Columns []string
		Text    string
	}{promptColumns(p), text}
	if err := draftPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripCodeFence removes a surrounding ``` or ```markdown fence that chat
// models like to wrap tables in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return ""
	}
	s = s[nl+1:]
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
