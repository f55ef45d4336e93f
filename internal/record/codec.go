package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// ErrNoRecords is returned when attempting to persist an empty sequence.
var ErrNoRecords = errors.New("no data has been recorded")

// fileFormat is the on-disk wrapper object.
type fileFormat struct {
	Records []Record `json:"records"`
}

// Encode writes the sequence to w as indented JSON.
func Encode(w io.Writer, records []Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fileFormat{Records: records}); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}

// Decode reads a sequence from r. Structural problems (non-UTF-8 input,
// malformed JSON) and semantically invalid fields surface as distinct
// errors; unknown key or button identifiers decode to the Unknown variant
// and are rejected at replay time instead.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("decode records: input is not valid UTF-8 text")
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if f.Records == nil {
		return nil, fmt.Errorf("decode records: missing \"records\" list")
	}
	return f.Records, nil
}

// Save writes the sequence to the named file.
func Save(path string, records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("failed to save: %w", ErrNoRecords)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Load reads a sequence from the named file.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}
