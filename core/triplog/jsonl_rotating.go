package triplog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/shuttle/core/model"
)

// RotatingJSONLStore writes one trip per line with size based rotation.
type RotatingJSONLStore struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	path   string
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return &RotatingJSONLStore{writer: lj, path: path}, nil
}

// Append writes the trips and rotates the file when it grows too large.
func (s *RotatingJSONLStore) Append(ctx context.Context, trips ...model.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.writer)
	for _, t := range trips {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(t); err != nil {
			return err
		}
	}
	return nil
}

// Query reads the current file and every rotated backup, oldest first.
func (s *RotatingJSONLStore) Query(ctx context.Context, q Query) ([]model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := filepath.Base(s.path)
	ext := filepath.Ext(base)
	backups, err := filepath.Glob(filepath.Join(filepath.Dir(s.path), base[:len(base)-len(ext)]+"-*"+ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(backups)
	var res []model.Trip
	for _, f := range append(backups, s.path) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trips, err := readJSONL(f, q)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		res = append(res, trips...)
	}
	return res, nil
}

func readJSONL(path string, q Query) ([]model.Trip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []model.Trip
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var t model.Trip
		if err := json.Unmarshal(scanner.Bytes(), &t); err != nil {
			continue
		}
		if q.Match(t) {
			res = append(res, t)
		}
	}
	return res, scanner.Err()
}

// Close closes the underlying writer.
func (s *RotatingJSONLStore) Close() error {
	return s.writer.Close()
}
