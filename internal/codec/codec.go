package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/creatorstation/tracker/internal/models"
)

// ImportFormatError means an import document does not have the expected shape.
type ImportFormatError struct {
	Reason string
	Err    error
}

func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid import document: %s: %v", e.Reason, e.Err)
	}
	return "invalid import document: " + e.Reason
}

func (e *ImportFormatError) Unwrap() error {
	return e.Err
}

// FileName is the download name of an export taken at t.
func FileName(t time.Time) string {
	return "influencers-" + t.UTC().Format("2006-01-02") + ".json"
}

// Marshal encodes records as a pretty-printed JSON array. A nil collection
// encodes as an empty array.
func Marshal(records []models.Influencer) ([]byte, error) {
	if records == nil {
		records = []models.Influencer{}
	}
	return json.MarshalIndent(records, "", "  ")
}

func Export(w io.Writer, records []models.Influencer) error {
	data, err := Marshal(records)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// wireRecord accepts the numeric ids written by older exports.
type wireRecord struct {
	ID json.RawMessage `json:"id"`
	*models.Influencer
}

// Unmarshal parses an export document. The document must be a JSON array of
// objects; field values are otherwise taken as-is.
func Unmarshal(data []byte) ([]models.Influencer, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, &ImportFormatError{Reason: "document must be a JSON array"}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ImportFormatError{Reason: "malformed JSON", Err: err}
	}

	out := make([]models.Influencer, 0, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("entry %d is not an object", i)}
		}

		var rec models.Influencer
		wire := wireRecord{Influencer: &rec}
		if err := json.Unmarshal(elem, &wire); err != nil {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("entry %d", i), Err: err}
		}
		id, err := decodeID(wire.ID)
		if err != nil {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("entry %d id", i), Err: err}
		}
		rec.ID = id
		out = append(out, rec)
	}
	return out, nil
}

func Import(r io.Reader) ([]models.Influencer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	return Unmarshal(data)
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
