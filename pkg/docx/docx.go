// Package docx reads and writes the text layer of Word (.docx) documents.
//
// A .docx file is a zip archive whose main part, word/document.xml, carries
// every paragraph and table cell of the body. This package indexes the w:t
// text nodes of that part, groups them into paragraphs, and lets callers
// rewrite run text in place. Saving splices the mutated text back into the
// original XML and copies every other archive entry through untouched, so
// formatting, styles, images and document settings survive byte for byte.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

const documentPart = "word/document.xml"

// runPattern matches a w:t element and captures its inner text. Text nodes
// cannot contain a literal '<', so the non-greedy capture is exact.
var runPattern = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)

var paragraphClose = regexp.MustCompile(`</w:p>`)

var (
	xmlUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")
	xmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Run is one w:t text node. Only its text is mutable; the surrounding run
// properties (font, style) stay in the original XML.
type Run struct {
	start, end int // inner text offsets within the original document XML
	text       string
}

// Text returns the run's current text.
func (r *Run) Text() string { return r.text }

// SetText replaces the run's text.
func (r *Run) SetText(s string) { r.text = s }

// Paragraph is the ordered list of runs between two w:p boundaries. Table
// cell content is paragraphs too, so iterating paragraphs covers the whole
// body, row-major through every cell.
type Paragraph struct {
	runs []*Run
}

// Runs returns the paragraph's runs in document order.
func (p *Paragraph) Runs() []*Run { return p.runs }

// Text returns the paragraph's logical text: the concatenation of all run
// text, as an editor would display it.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.runs {
		b.WriteString(r.text)
	}
	return b.String()
}

// Replace substitutes every occurrence of old in the paragraph's logical
// text, even when an occurrence is split across runs. The replacement is
// written into the run where the match starts; the matched remainder is cut
// out of the following runs. Returns the number of substitutions made.
func (p *Paragraph) Replace(old, new string) int {
	if old == "" {
		return 0
	}
	count := 0
	from := 0
	for {
		text := p.Text()
		if from >= len(text) {
			return count
		}
		idx := strings.Index(text[from:], old)
		if idx < 0 {
			return count
		}
		idx += from
		end := idx + len(old)

		pos := 0
		inserted := false
		for _, r := range p.runs {
			rs, re := pos, pos+len(r.text)
			pos = re
			if re <= idx || rs >= end {
				continue
			}
			lo, hi := idx, end
			if lo < rs {
				lo = rs
			}
			if hi > re {
				hi = re
			}
			prefix := r.text[:lo-rs]
			suffix := r.text[hi-rs:]
			if inserted {
				r.text = prefix + suffix
			} else {
				r.text = prefix + new + suffix
				inserted = true
			}
		}
		from = idx + len(new)
		count++
	}
}

type entry struct {
	name string
	data []byte
}

// Document is an opened .docx file.
type Document struct {
	entries    []entry // all archive entries in original order
	xml        string  // original word/document.xml content
	paragraphs []*Paragraph
}

// Open reads and parses the .docx file at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(data)
}

// Parse parses an in-memory .docx file.
func Parse(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open document archive: %w", err)
	}

	doc := &Document{}
	found := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
		}
		doc.entries = append(doc.entries, entry{name: f.Name, data: content})
		if f.Name == documentPart {
			doc.xml = string(content)
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("archive has no %s part", documentPart)
	}

	doc.index()
	return doc, nil
}

// index builds the run and paragraph structures from the document XML.
func (d *Document) index() {
	var closes []int
	for _, loc := range paragraphClose.FindAllStringIndex(d.xml, -1) {
		closes = append(closes, loc[0])
	}

	byParagraph := make(map[int]*Paragraph)
	var order []int
	for _, loc := range runPattern.FindAllStringSubmatchIndex(d.xml, -1) {
		start, end := loc[2], loc[3]
		run := &Run{start: start, end: end, text: xmlUnescaper.Replace(d.xml[start:end])}
		idx := sort.SearchInts(closes, start)
		p, ok := byParagraph[idx]
		if !ok {
			p = &Paragraph{}
			byParagraph[idx] = p
			order = append(order, idx)
		}
		p.runs = append(p.runs, run)
	}
	for _, idx := range order {
		d.paragraphs = append(d.paragraphs, byParagraph[idx])
	}
}

// Paragraphs returns every paragraph of the body, table cells included, in
// document order.
func (d *Document) Paragraphs() []*Paragraph { return d.paragraphs }

// documentXML rebuilds word/document.xml with the current run text spliced
// into the original markup.
func (d *Document) documentXML() string {
	var b strings.Builder
	prev := 0
	for _, p := range d.paragraphs {
		for _, r := range p.runs {
			b.WriteString(d.xml[prev:r.start])
			b.WriteString(xmlEscaper.Replace(r.text))
			prev = r.end
		}
	}
	b.WriteString(d.xml[prev:])
	return b.String()
}

// SaveTo writes the document as a .docx archive. Every entry except the main
// document part is copied verbatim.
func (d *Document) SaveTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, e := range d.entries {
		fw, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("failed to create archive entry %s: %w", e.name, err)
		}
		data := e.data
		if e.name == documentPart {
			data = []byte(d.documentXML())
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("failed to write archive entry %s: %w", e.name, err)
		}
	}
	return zw.Close()
}

// Save writes the document to a new file at path.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create document file: %w", err)
	}
	if err := d.SaveTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
