package service

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/FirstLeaseAgent/template-pdf/pkg/docx"
)

// buildDocxBytes assembles a minimal .docx archive around the given
// word/document.xml body content.
func buildDocxBytes(t *testing.T, body string) []byte {
	t.Helper()
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`},
		{"word/document.xml", documentXML},
	} {
		fw, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("Failed to create archive entry: %v", err)
		}
		if _, err := fw.Write([]byte(f.content)); err != nil {
			t.Fatalf("Failed to write archive entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
	return buf.Bytes()
}

func buildDoc(t *testing.T, body string) *docx.Document {
	t.Helper()
	doc, err := docx.Parse(buildDocxBytes(t, body))
	if err != nil {
		t.Fatalf("Failed to parse test document: %v", err)
	}
	return doc
}

// writeDocxFile drops a test template into dir and returns its path.
func writeDocxFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buildDocxBytes(t, body), 0o644); err != nil {
		t.Fatalf("Failed to write test template: %v", err)
	}
	return path
}

func mustOpen(t *testing.T, path string) *docx.Document {
	t.Helper()
	doc, err := docx.Open(path)
	if err != nil {
		t.Fatalf("Failed to open document %s: %v", path, err)
	}
	return doc
}

// writeFakeConverter writes a shell script that mimics the soffice CLI: it
// takes the --outdir flag and the input path, and either drops a .pdf next to
// the outdir or exits with the given code.
func writeFakeConverter(t *testing.T, exitCode int) string {
	t.Helper()
	script := "#!/bin/sh\n"
	if exitCode != 0 {
		script += "echo 'conversion error' >&2\nexit " + strconv.Itoa(exitCode) + "\n"
	} else {
		script += `outdir="$5"
input="$6"
base=$(basename "$input" .docx)
cp "$input" "$outdir/$base.pdf"
`
	}
	path := filepath.Join(t.TempDir(), "fake-soffice.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write fake converter: %v", err)
	}
	return path
}

func allText(doc *docx.Document) []string {
	var out []string
	for _, p := range doc.Paragraphs() {
		out = append(out, p.Text())
	}
	return out
}
