package document

import "strconv"

// DocType is the closed set of source formats a Document can carry.
// Supplemental formats (PDF, DOCX) extract to plain text and are tagged
// DocTypeText.
type DocType string

const (
	DocTypeCSV  DocType = "csv"
	DocTypeJSON DocType = "json"
	DocTypeText DocType = "text"
	DocTypeWeb  DocType = "web"
)

// Metadata describes where a Document came from. RowIndex is -1 unless the
// document was fanned out from a tabular row; JSONKey is empty unless it was
// fanned out from a top-level JSON object key.
type Metadata struct {
	Source   string
	Type     DocType
	RowIndex int
	JSONKey  string
}

// Document is one loaded unit of ingestible text. The loader never produces
// a Document with empty text; chunks inherit the metadata unchanged.
type Document struct {
	Text     string
	Metadata Metadata
}

// AsMap renders the metadata in the flat string form persisted alongside
// each chunk in the vector index.
func (m Metadata) AsMap() map[string]string {
	out := map[string]string{
		"source":   m.Source,
		"doc_type": string(m.Type),
	}
	if m.RowIndex >= 0 {
		out["row_index"] = strconv.Itoa(m.RowIndex)
	}
	if m.JSONKey != "" {
		out["json_key"] = m.JSONKey
	}
	return out
}

func newMetadata(source string, t DocType) Metadata {
	return Metadata{Source: source, Type: t, RowIndex: -1}
}
