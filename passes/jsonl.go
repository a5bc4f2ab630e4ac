package passes

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/theimaginaryfoundation/annotate-o-tron/passes/fileutils"
)

// maxRecordBytes bounds a single JSONL line; HH-RLHF red-team transcripts can
// run to a few hundred KB.
const maxRecordBytes = 16 << 20

// LoadRecords reads newline-delimited JSON records. Lines that are not valid
// JSON objects are dropped silently; reading stops once limit rows have been
// accepted (limit <= 0 means no limit).
func LoadRecords(path string, limit int) ([]Record, error) {
	if path == "" {
		return nil, errors.New("LoadRecords: path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadRecords: open: %w", err)
	}
	defer f.Close()

	var recs []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxRecordBytes)
	for sc.Scan() {
		if limit > 0 && len(recs) >= limit {
			break
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) || !gjson.ParseBytes(line).IsObject() {
			continue
		}
		recs = append(recs, Record(append([]byte(nil), line...)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("LoadRecords: scan: %w", err)
	}
	return recs, nil
}

// SaveRecords writes records as newline-delimited JSON, atomically replacing
// any existing file.
func SaveRecords(path string, recs []Record) error {
	if path == "" {
		return errors.New("SaveRecords: path is empty")
	}
	var buf bytes.Buffer
	for _, r := range recs {
		buf.Write(r)
		buf.WriteByte('\n')
	}
	if err := fileutils.WriteFileAtomicSameDir(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("SaveRecords: write: %w", err)
	}
	return nil
}
