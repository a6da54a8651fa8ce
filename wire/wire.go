// Package wire implements the CLI's external JSON surface (spec §6): the
// add and search JSON-lines/JSON-object request shapes, and the JSON
// response shapes list and search write to standard output. All encoding
// goes through package codec, so the wire format tracks the codec.Default
// implementation (github.com/goccy/go-json) without wire itself importing
// an encoding package directly.
package wire

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rahulunair/vekta/codec"
)

// InputRecord is the JSON shape accepted by add (one per line) and search
// (a single object). metadata is accepted and discarded, per spec §6.
type InputRecord struct {
	Label    string    `json:"label"`
	Vector   []float32 `json:"vector"`
	Metadata any       `json:"metadata,omitempty"`
}

// ResultHit is one scored hit in a search response.
type ResultHit struct {
	Label      string  `json:"label"`
	Similarity float32 `json:"similarity"`
}

// SearchResponse is the JSON object search writes to standard output.
type SearchResponse struct {
	Query   InputRecord `json:"query"`
	Results []ResultHit `json:"results"`
}

// ReadRecords decodes a JSON-lines stream from r, calling fn for each
// decoded record in order. A line that fails to parse is reported to fn
// via lineErr rather than aborting the scan, so the caller can skip it
// and continue per spec §5's per-record error propagation policy.
func ReadRecords(r io.Reader, fn func(line int, rec InputRecord, lineErr error) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec InputRecord
		err := codec.Default.Unmarshal(raw, &rec)
		if callErr := fn(line, rec, err); callErr != nil {
			return callErr
		}
	}
	return scanner.Err()
}

// ReadOne decodes a single JSON object from r, for the search command's
// request body.
func ReadOne(r io.Reader) (InputRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return InputRecord{}, fmt.Errorf("wire: reading request: %w", err)
	}
	var rec InputRecord
	if err := codec.Default.Unmarshal(data, &rec); err != nil {
		return InputRecord{}, fmt.Errorf("wire: parsing request: %w", err)
	}
	return rec, nil
}

// WriteRecord writes one JSON object per line, for list.
func WriteRecord(w io.Writer, rec InputRecord) error {
	data, err := codec.Default.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteSearchResponse writes resp as a single JSON object, for search.
func WriteSearchResponse(w io.Writer, resp SearchResponse) error {
	data, err := codec.Default.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
