package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/theimaginaryfoundation/annotate-o-tron/passes/fileutils"
)

// maxLineBytes caps one source line; HH transcripts run long but never this
// long.
const maxLineBytes = 16 * 1024 * 1024

type pairSource struct {
	Chosen   string `json:"chosen"`
	Rejected string `json:"rejected"`
}

type redTeamSource struct {
	Transcript      string  `json:"transcript"`
	TaskDescription *string `json:"task_description"`
}

// InitPairFile converts one train.jsonl of chosen/rejected pairs into master
// records. Unparseable source lines are skipped, keeping line numbering
// aligned with the source file. Returns the number of records written.
func InitPairFile(srcPath, dstPath, folder, file string) (int, error) {
	in, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("InitPairFile: %w", err)
	}
	defer in.Close()

	out, err := createTarget(dstPath)
	if err != nil {
		return 0, fmt.Errorf("InitPairFile: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	written := 0
	lineIdx := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lineIdx++
		var src pairSource
		if err := json.Unmarshal(scanner.Bytes(), &src); err != nil {
			continue
		}
		rec := NewPairRecord(src.Chosen, src.Rejected, folder, file, lineIdx)
		if err := writeRecord(w, rec); err != nil {
			return written, fmt.Errorf("InitPairFile: line %d: %w", lineIdx, err)
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("InitPairFile: scan %s: %w", srcPath, err)
	}
	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("InitPairFile: flush: %w", err)
	}
	return written, nil
}

// InitRedTeamFile converts the red-team source, which despite its .jsonl name
// is one big JSON array, into master records. Entries are streamed so the
// whole array never sits in memory at once.
func InitRedTeamFile(srcPath, dstPath, folder, file string) (int, error) {
	in, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("InitRedTeamFile: %w", err)
	}
	defer in.Close()

	out, err := createTarget(dstPath)
	if err != nil {
		return 0, fmt.Errorf("InitRedTeamFile: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	dec := json.NewDecoder(bufio.NewReaderSize(in, 1<<20))
	if _, err := dec.Token(); err != nil {
		return 0, fmt.Errorf("InitRedTeamFile: array open: %w", err)
	}

	written := 0
	lineIdx := 0
	for dec.More() {
		lineIdx++
		var src redTeamSource
		if err := dec.Decode(&src); err != nil {
			return written, fmt.Errorf("InitRedTeamFile: entry %d: %w", lineIdx, err)
		}
		rec := NewRedTeamRecord(src.Transcript, src.TaskDescription, folder, file, lineIdx)
		if err := writeRecord(w, rec); err != nil {
			return written, fmt.Errorf("InitRedTeamFile: entry %d: %w", lineIdx, err)
		}
		written++
	}
	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("InitRedTeamFile: flush: %w", err)
	}
	return written, nil
}

// InitTree mirrors the source corpus layout under dstRoot: every train.jsonl
// becomes a master pair file, and the red-team array gets its own converter.
func InitTree(srcRoot, dstRoot string, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	err := filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "train.jsonl" {
			return nil
		}
		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}
		folder := filepath.ToSlash(filepath.Dir(rel))
		if folder == "." {
			folder = ""
		}
		n, err := InitPairFile(path, filepath.Join(dstRoot, rel), folder, d.Name())
		if err != nil {
			return err
		}
		log.Info("pair file initialized", "source", path, "records", n)
		return nil
	})
	if err != nil {
		return fmt.Errorf("InitTree: %w", err)
	}

	redSrc := filepath.Join(srcRoot, "red-team-attempts", "red_team_attempts.jsonl")
	if fileutils.FileExists(redSrc) {
		redDst := filepath.Join(dstRoot, "red-team-attempts", "red_team_attempts.jsonl")
		n, err := InitRedTeamFile(redSrc, redDst, "red-team-attempts", "red_team_attempts.jsonl")
		if err != nil {
			return fmt.Errorf("InitTree: %w", err)
		}
		log.Info("red-team file initialized", "source", redSrc, "records", n)
	}
	return nil
}

func createTarget(dstPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return nil, err
	}
	return os.Create(dstPath)
}

func writeRecord(w *bufio.Writer, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	return w.WriteByte('\n')
}
