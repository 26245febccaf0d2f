package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/world"
)

// Files lists the rotated files of one stream (e.g. "ticks") in time order.
func Files(dataDir, stream string) ([]string, error) {
	out, err := filepath.Glob(filepath.Join(dataDir, stream, stream+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// ReadLines decodes every JSON line of a zstd file into fn.
func ReadLines(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := fn(sc.Bytes()); err != nil {
			return fmt.Errorf("%s:%d: %w", path, n, err)
		}
	}
	return sc.Err()
}

func ReadTicks(path string) ([]world.TickRecord, error) {
	var out []world.TickRecord
	err := ReadLines(path, func(line []byte) error {
		var rec world.TickRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func ReadMatches(path string) ([]MatchRecord, error) {
	var out []MatchRecord
	err := ReadLines(path, func(line []byte) error {
		var rec MatchRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}
