package handler

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
)

// newTenantRouter builds a test router with the tenant already resolved, the
// way the auth middleware would leave it.
func newTenantRouter(tenant string) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("username", "testuser")
		c.Set("tenant", tenant)
		c.Next()
	})
	return router
}

// docxBytes assembles a minimal .docx archive around the given
// word/document.xml body content.
func docxBytes(t *testing.T, body string) []byte {
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

func writeTemplateFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, docxBytes(t, body), 0o644); err != nil {
		t.Fatalf("Failed to write template file: %v", err)
	}
	return path
}

// fakeConverter writes a shell script that copies its input next to the
// requested outdir as a .pdf.
func fakeConverter(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
outdir="$5"
input="$6"
base=$(basename "$input" .docx)
cp "$input" "$outdir/$base.pdf"
`
	path := filepath.Join(t.TempDir(), "fake-soffice.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write fake converter: %v", err)
	}
	return path
}
