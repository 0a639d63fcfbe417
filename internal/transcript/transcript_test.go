package transcript

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestWriter_RecordsReadBack(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	recs := []Record{
		{At: "2026-03-14T09:00:00Z", Agent: "casey", RequestID: "r1", Attempt: 0, Outcome: "rejected", RawPreview: "not json"},
		{At: "2026-03-14T09:00:05Z", Agent: "casey", RequestID: "r1", Attempt: 1, Outcome: "accepted", Goal: "gather driftwood"},
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "transcripts", "planner-*.jsonl.zst"))
	if err != nil || len(files) != 1 {
		t.Fatalf("transcript files = %v (err=%v), want exactly one", files, err)
	}

	f, err := os.Open(files[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []Record
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, r)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(recs) {
		t.Fatalf("read %d records, want %d", len(got), len(recs))
	}
	if got[0].Outcome != "rejected" || got[1].Outcome != "accepted" {
		t.Fatalf("outcomes = %q, %q", got[0].Outcome, got[1].Outcome)
	}
	if got[1].Goal != "gather driftwood" {
		t.Fatalf("goal = %q", got[1].Goal)
	}
}
