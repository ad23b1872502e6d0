package activity

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 << 20

// LoadFile reads an event timeline from path. Plain files may hold a JSON
// array or one JSON object per line; a ".zst" suffix marks zstd-compressed
// content of either shape.
func LoadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	events, err := ReadEvents(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return events, nil
}

// ReadEvents decodes a JSON array or JSONL stream of events.
func ReadEvents(r io.Reader) ([]Event, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if first == '[' {
		var events []Event
		if err := json.NewDecoder(br).Decode(&events); err != nil {
			return nil, fmt.Errorf("decoding event array: %w", err)
		}
		return events, nil
	}
	return readJSONL(br)
}

func readJSONL(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var events []Event
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

// LoadDailyTotals reads a JSON array of pre-aggregated daily totals.
func LoadDailyTotals(path string) ([]DailyTotal, error) {
	return loadJSON[[]DailyTotal](path)
}

// LoadCategoryDailyTotals reads a JSON array of per-category daily totals.
func LoadCategoryDailyTotals(path string) ([]CategoryDailyTotal, error) {
	return loadJSON[[]CategoryDailyTotal](path)
}

func loadJSON[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// WriteCompressed archives events to path as zstd-compressed JSONL and
// returns the number of bytes written to disk.
func WriteCompressed(events []Event, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create archive dir: %w", err)
	}

	dest, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer func() { _ = dest.Close() }()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return 0, fmt.Errorf("create zstd encoder: %w", err)
	}

	enc := json.NewEncoder(encoder)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			encoder.Close()
			return 0, fmt.Errorf("compress: %w", err)
		}
	}
	if err := encoder.Close(); err != nil {
		return 0, fmt.Errorf("finalize compression: %w", err)
	}

	info, err := dest.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
