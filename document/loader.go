package document

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"
)

// allowedExtensions are the file types picked up by the data directory scan.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".json": true,
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
}

const wordMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ScanDataDir recursively lists files under dataDir with an allowed
// extension. A missing directory yields an empty list, not an error.
func ScanDataDir(dataDir string) []string {
	var files []string
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && allowedExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil
	}
	return files
}

// Loader turns local files into Documents. Unreadable, unsupported or
// malformed files are logged and skipped; a batch never fails as a whole.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

func (l *Loader) LoadFiles(paths []string) []Document {
	var out []Document
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			l.logger.Warn("File not found, skipping",
				slog.String("path", p))
			continue
		}

		src := p
		if abs, err := filepath.Abs(p); err == nil {
			src = abs
		}

		docs, err := l.loadFile(p, src)
		if err != nil {
			l.logger.Warn("Failed to load file, skipping",
				slog.String("path", p),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, docs...)
	}
	return out
}

func (l *Loader) loadFile(path, src string) ([]Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path, src)
	case ".json":
		return loadJSON(path, src)
	case ".txt", ".md":
		return loadText(path, src)
	case ".pdf":
		return l.loadPDF(path, src)
	case ".docx":
		return loadWord(path, src)
	default:
		l.logger.Warn("Unsupported file type, skipping",
			slog.String("path", path))
		return nil, nil
	}
}

// loadCSV emits one Document per data row: the header fields rendered as
// "name: value" lines, with the zero-based row position in the metadata.
func loadCSV(path, src string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	docs := make([]Document, 0, len(records)-1)
	for i, row := range records[1:] {
		lines := make([]string, 0, len(header))
		for j, name := range header {
			if j < len(row) {
				lines = append(lines, name+": "+row[j])
			}
		}
		meta := newMetadata(src, DocTypeCSV)
		meta.RowIndex = i
		docs = append(docs, Document{Text: strings.Join(lines, "\n"), Metadata: meta})
	}
	return docs, nil
}

// loadJSON fans out by shape: a list becomes row documents, an object
// becomes one pretty-printed summary plus one document per top-level key,
// anything else becomes a single plain-text document.
func loadJSON(path, src string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	switch v := parsed.(type) {
	case []interface{}:
		docs := make([]Document, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("JSON array element %d is not an object", i)
			}
			meta := newMetadata(src, DocTypeJSON)
			meta.RowIndex = i
			docs = append(docs, Document{Text: renderRow(obj), Metadata: meta})
		}
		return docs, nil

	case map[string]interface{}:
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		docs := []Document{{Text: string(pretty), Metadata: newMetadata(src, DocTypeJSON)}}
		for _, k := range sortedKeys(v) {
			val, err := json.Marshal(v[k])
			if err != nil {
				return nil, err
			}
			meta := newMetadata(src, DocTypeJSON)
			meta.JSONKey = k
			docs = append(docs, Document{
				Text:     fmt.Sprintf("key: %s\nvalue: %s", k, string(val)),
				Metadata: meta,
			})
		}
		return docs, nil

	default:
		text := renderScalar(parsed)
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("empty JSON value")
		}
		return []Document{{Text: text, Metadata: newMetadata(src, DocTypeJSON)}}, nil
	}
}

func loadText(path, src string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("empty file")
	}
	return []Document{{Text: string(data), Metadata: newMetadata(src, DocTypeText)}}, nil
}

// loadPDF extracts plain text page by page and produces one text Document
// for the whole file.
func (l *Loader) loadPDF(path, src string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			l.logger.Warn("Null PDF page encountered",
				slog.String("path", path),
				slog.Int("page_number", pageIndex))
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageIndex, err)
		}
		sb.WriteString(text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return nil, fmt.Errorf("no text content extracted from PDF")
	}
	return []Document{{Text: sb.String(), Metadata: newMetadata(src, DocTypeText)}}, nil
}

func loadWord(path, src string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result, err := docconv.Convert(bytes.NewReader(data), wordMimeType, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert Word document: %w", err)
	}
	if strings.TrimSpace(result.Body) == "" {
		return nil, fmt.Errorf("no text content extracted from Word document")
	}
	return []Document{{Text: result.Body, Metadata: newMetadata(src, DocTypeText)}}, nil
}

// renderRow turns an object into "name: value" lines, one per field, in
// sorted key order so repeated ingestion runs produce identical text.
func renderRow(row map[string]interface{}) string {
	lines := make([]string, 0, len(row))
	for _, k := range sortedKeys(row) {
		lines = append(lines, k+": "+renderScalar(row[k]))
	}
	return strings.Join(lines, "\n")
}

func renderScalar(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
