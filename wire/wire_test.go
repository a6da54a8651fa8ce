package wire

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadRecordsSkipsBadLinesButContinues(t *testing.T) {
	input := strings.NewReader(`{"label":"a","vector":[1,2]}
not json
{"label":"b","vector":[3,4]}
`)
	var ok []InputRecord
	var badLines []int
	err := ReadRecords(input, func(line int, rec InputRecord, lineErr error) error {
		if lineErr != nil {
			badLines = append(badLines, line)
			return nil
		}
		ok = append(ok, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(ok) != 2 {
		t.Fatalf("len(ok) = %d, want 2", len(ok))
	}
	if len(badLines) != 1 || badLines[0] != 2 {
		t.Fatalf("badLines = %v, want [2]", badLines)
	}
}

func TestReadOne(t *testing.T) {
	rec, err := ReadOne(strings.NewReader(`{"label":"q","vector":[1,2,3]}`))
	if err != nil {
		t.Fatalf("ReadOne: %v", err)
	}
	if rec.Label != "q" || len(rec.Vector) != 3 {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestMetadataIgnored(t *testing.T) {
	rec, err := ReadOne(strings.NewReader(`{"label":"q","vector":[1],"metadata":{"source":"x"}}`))
	if err != nil {
		t.Fatalf("ReadOne: %v", err)
	}
	if rec.Label != "q" {
		t.Fatalf("label = %q", rec.Label)
	}
}

func TestWriteSearchResponse(t *testing.T) {
	var buf bytes.Buffer
	resp := SearchResponse{
		Query:   InputRecord{Label: "q", Vector: []float32{1, 2}},
		Results: []ResultHit{{Label: "a", Similarity: 0.9}},
	}
	if err := WriteSearchResponse(&buf, resp); err != nil {
		t.Fatalf("WriteSearchResponse: %v", err)
	}
	if !strings.Contains(buf.String(), `"label":"q"`) || !strings.Contains(buf.String(), `"similarity":0.9`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
