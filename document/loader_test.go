package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writePDF builds a minimal single-page PDF with one uncompressed content
// stream. Cross-reference offsets are computed while writing so the file is
// valid regardless of the text length. An empty text yields a page with an
// empty content stream.
func writePDF(t *testing.T, dir, name, text string) string {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int, 6)
	addObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")
	addObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	addObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	addObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>")
	var content string
	if text != "" {
		content = fmt.Sprintf("BT /F1 12 Tf (%s) Tj ET", text)
	}
	addObj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	addObj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	xrefPos := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefPos)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeDocx builds a minimal Word archive containing only the main document
// part, with the given text in a single run.
func writeDocx(t *testing.T, dir, name, text string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	ct, err := zw.Create("[Content_Types].xml")
	if err != nil {
		t.Fatal(err)
	}
	types := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`
	if _, err := ct.Write([]byte(types)); err != nil {
		t.Fatal(err)
	}
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lifts.csv",
		"name,elevation\nHotham Central,1750\nDinner Plain,1520\n")

	docs := testLoader().LoadFiles([]string{path})
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	abs, _ := filepath.Abs(path)
	for i, doc := range docs {
		if doc.Metadata.Source != abs {
			t.Errorf("doc %d source = %q, want %q", i, doc.Metadata.Source, abs)
		}
		if doc.Metadata.Type != DocTypeCSV {
			t.Errorf("doc %d type = %q, want csv", i, doc.Metadata.Type)
		}
		if doc.Metadata.RowIndex != i {
			t.Errorf("doc %d row index = %d, want %d", i, doc.Metadata.RowIndex, i)
		}
	}
	if docs[0].Text != "name: Hotham Central\nelevation: 1750" {
		t.Errorf("unexpected row text: %q", docs[0].Text)
	}
}

func TestLoadJSONObject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resort.json", `{"a": 1, "b": 2}`)

	docs := testLoader().LoadFiles([]string{path})
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents (summary + one per key), got %d", len(docs))
	}

	summary := docs[0]
	if summary.Metadata.Type != DocTypeJSON || summary.Metadata.JSONKey != "" {
		t.Errorf("unexpected summary metadata: %+v", summary.Metadata)
	}
	if !strings.Contains(summary.Text, `"a"`) || !strings.Contains(summary.Text, `"b"`) {
		t.Errorf("summary text missing keys: %q", summary.Text)
	}

	if docs[1].Text != "key: a\nvalue: 1" {
		t.Errorf("unexpected key document: %q", docs[1].Text)
	}
	if docs[1].Metadata.JSONKey != "a" || docs[2].Metadata.JSONKey != "b" {
		t.Errorf("key documents out of order: %q, %q",
			docs[1].Metadata.JSONKey, docs[2].Metadata.JSONKey)
	}
}

func TestLoadJSONArray(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "passes.json", `[{"type": "day"}, {"type": "season"}]`)

	docs := testLoader().LoadFiles([]string{path})
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	for i, doc := range docs {
		if doc.Metadata.RowIndex != i {
			t.Errorf("doc %d row index = %d", i, doc.Metadata.RowIndex)
		}
		if doc.Metadata.Type != DocTypeJSON {
			t.Errorf("doc %d type = %q", i, doc.Metadata.Type)
		}
	}
	if docs[0].Text != "type: day" {
		t.Errorf("unexpected row text: %q", docs[0].Text)
	}
}

func TestLoadTextVerbatim(t *testing.T) {
	dir := t.TempDir()
	content := "The resort opens in June.\n\nChains may be required.\n"
	path := writeFile(t, dir, "notes.md", content)

	docs := testLoader().LoadFiles([]string{path})
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Text != content {
		t.Errorf("text was altered: %q", docs[0].Text)
	}
	if docs[0].Metadata.Type != DocTypeText {
		t.Errorf("type = %q, want text", docs[0].Metadata.Type)
	}
}

func TestLoadPDF(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "brochure.pdf", "Mt Hotham sits at 1750 metres.")

	docs := testLoader().LoadFiles([]string{path})
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if !strings.Contains(docs[0].Text, "Mt Hotham sits at 1750 metres.") {
		t.Errorf("extracted text missing page content: %q", docs[0].Text)
	}
	if docs[0].Metadata.Type != DocTypeText {
		t.Errorf("type = %q, want text", docs[0].Metadata.Type)
	}
	abs, _ := filepath.Abs(path)
	if docs[0].Metadata.Source != abs {
		t.Errorf("source = %q, want %q", docs[0].Metadata.Source, abs)
	}
}

func TestLoadDocx(t *testing.T) {
	dir := t.TempDir()
	path := writeDocx(t, dir, "guide.docx", "Chains must be carried in winter.")

	docs := testLoader().LoadFiles([]string{path})
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if !strings.Contains(docs[0].Text, "Chains must be carried in winter.") {
		t.Errorf("extracted text missing body content: %q", docs[0].Text)
	}
	if docs[0].Metadata.Type != DocTypeText {
		t.Errorf("type = %q, want text", docs[0].Metadata.Type)
	}
}

func TestEmptyExtractionsAreSkipped(t *testing.T) {
	dir := t.TempDir()
	emptyPDF := writePDF(t, dir, "blank.pdf", "")
	emptyDocx := writeDocx(t, dir, "blank.docx", "")
	good := writeFile(t, dir, "good.txt", "The village bus is free.")

	docs := testLoader().LoadFiles([]string{emptyPDF, emptyDocx, good})
	if len(docs) != 1 {
		t.Fatalf("expected only the text file to load, got %d documents", len(docs))
	}
	if docs[0].Text != "The village bus is free." {
		t.Errorf("unexpected document: %q", docs[0].Text)
	}
}

func TestSkipsDoNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "Lift tickets are cheaper online.")
	bad := writeFile(t, dir, "bad.json", `{"unterminated`)
	unsupported := writeFile(t, dir, "config.yaml", "a: 1")
	empty := writeFile(t, dir, "empty.txt", "   \n")
	missing := filepath.Join(dir, "does-not-exist.csv")

	docs := testLoader().LoadFiles([]string{missing, bad, unsupported, empty, good})
	if len(docs) != 1 {
		t.Fatalf("expected only the good file to load, got %d documents", len(docs))
	}
	if docs[0].Text != "Lift tickets are cheaper online." {
		t.Errorf("unexpected document: %q", docs[0].Text)
	}
}

func TestScanDataDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "x\n1\n")
	writeFile(t, dir, "b.yaml", "x: 1")
	writePDF(t, dir, "d.pdf", "terrain map")
	writeDocx(t, dir, "e.docx", "lesson times")
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "c.md", "# notes")

	files := ScanDataDir(dir)
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %d: %v", len(files), files)
	}

	if files := ScanDataDir(filepath.Join(dir, "missing")); len(files) != 0 {
		t.Errorf("expected no files for missing dir, got %v", files)
	}
}

func TestMetadataAsMap(t *testing.T) {
	row := Metadata{Source: "/data/a.csv", Type: DocTypeCSV, RowIndex: 0}
	m := row.AsMap()
	if m["row_index"] != "0" || m["doc_type"] != "csv" || m["source"] != "/data/a.csv" {
		t.Errorf("unexpected map: %v", m)
	}

	plain := Metadata{Source: "/data/a.txt", Type: DocTypeText, RowIndex: -1}
	if _, ok := plain.AsMap()["row_index"]; ok {
		t.Error("row_index should be absent for non-row documents")
	}
	if _, ok := plain.AsMap()["json_key"]; ok {
		t.Error("json_key should be absent when empty")
	}
}
