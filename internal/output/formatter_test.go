package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"toon", FormatTOON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"mermaid", FormatMermaid},
		{"mmd", FormatMermaid},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter(FormatJSON, "", true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	defer f.Close()

	if f.Format() != FormatJSON {
		t.Errorf("Format() = %q, want json", f.Format())
	}
	if !f.Colored() {
		t.Error("Colored() should be true for stdout")
	}
	if f.file != nil {
		t.Error("file should be nil for stdout")
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "output.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.Colored() {
		t.Error("file output should never be colored")
	}
	if err := f.Output(map[string]int{"a": 1}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"a": 1`) {
		t.Errorf("file content = %q", data)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, filepath.Join(t.TempDir(), "missing", "out.txt"), false)
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestOutputRaw(t *testing.T) {
	data := map[string]string{"key": "value"}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatJSON, []string{`"key": "value"`}},
		{FormatText, []string{`"key": "value"`}},
		{FormatMarkdown, []string{"```json", `"key": "value"`, "```"}},
		{FormatTOON, []string{"key", "value"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWriterFormatter(tt.format, &buf, false).Output(data); err != nil {
				t.Fatalf("Output() error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestOutputMermaidRequiresDiagram(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriterFormatter(FormatMermaid, &buf, false).Output(map[string]int{})
	if !errors.Is(err, ErrNoDiagram) {
		t.Errorf("expected ErrNoDiagram, got %v", err)
	}
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("T", []string{"Name", "Count"}, [][]string{{"a", "1"}, {"b"}}, nil, nil)
	rows, ok := table.RenderData().([]map[string]string)
	if !ok {
		t.Fatalf("RenderData() type = %T", table.RenderData())
	}
	if len(rows) != 2 || rows[0]["Name"] != "a" || rows[0]["Count"] != "1" {
		t.Errorf("rows = %v", rows)
	}
	if _, ok := rows[1]["Count"]; ok {
		t.Error("short rows should leave missing columns out")
	}

	withData := NewTable("T", nil, nil, nil, []int{1, 2})
	if got, ok := withData.RenderData().([]int); !ok || len(got) != 2 {
		t.Errorf("RenderData() = %v, want wrapped data", withData.RenderData())
	}
}

func TestTableRenderText(t *testing.T) {
	table := NewTable("Modules", []string{"Module", "Count"},
		[][]string{{"src/a.ts", "3"}}, []string{"Total", "3"}, nil)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Modules", "-------", "src/a.ts", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableEmpty(t *testing.T) {
	table := NewTable("Cycles", []string{"Path"}, nil, nil, nil)
	table.Empty = "No cycles."

	var text, md bytes.Buffer
	if err := table.RenderText(&text, false); err != nil {
		t.Fatal(err)
	}
	if err := table.RenderMarkdown(&md); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "No cycles.") || !strings.Contains(md.String(), "No cycles.") {
		t.Errorf("empty message missing:\n%s\n%s", text.String(), md.String())
	}
	if strings.Contains(md.String(), "| Path |") {
		t.Error("empty table should not render headers")
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Hints", []string{"From", "Reason"},
		[][]string{{"a.ts", "x | y"}}, nil, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatal(err)
	}
	want := "### Hints\n\n| From | Reason |\n| --- | --- |\n| a.ts | x \\| y |\n\n"
	if buf.String() != want {
		t.Errorf("RenderMarkdown() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestReport(t *testing.T) {
	r := &Report{
		Title:   "Summary",
		Summary: []string{"Files: 2"},
		Sections: []Renderable{
			NewTable("One", []string{"A"}, [][]string{{"1"}}, nil, nil),
		},
	}

	var md bytes.Buffer
	if err := r.RenderMarkdown(&md); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md.String(), "## Summary\n\n- Files: 2\n\n### One") {
		t.Errorf("RenderMarkdown() = %q", md.String())
	}

	data, err := json.Marshal(r.RenderData())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"title":"Summary"`) {
		t.Errorf("RenderData() = %s", data)
	}
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	f.Success("done %d", 1)
	f.Warning("careful")
	if buf.String() != "done 1\nWARNING: careful\n" {
		t.Errorf("messages = %q", buf.String())
	}
}

func TestMarshalTOON(t *testing.T) {
	out, err := MarshalTOON(struct {
		Name  string `toon:"name"`
		Count int    `toon:"count"`
	}{"firebat", 3})
	if err != nil {
		t.Fatalf("MarshalTOON() error: %v", err)
	}
	if !strings.Contains(out, "name") || !strings.Contains(out, "firebat") {
		t.Errorf("MarshalTOON() = %q", out)
	}
}
