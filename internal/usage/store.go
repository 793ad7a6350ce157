package usage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/shini4i/moninet/internal/counters"
	"github.com/shini4i/moninet/internal/fileutil"
)

// DefaultFileName is the name of the persisted usage record.
const DefaultFileName = "total_usage.json"

var (
	// ErrIncompleteRecord is returned by Load when some fields were missing or invalid
	// and had to be seeded from the fallback snapshot.
	ErrIncompleteRecord = errors.New("usage record incomplete")
	// ErrMalformedRecord is returned by Load when the record is not a JSON object.
	ErrMalformedRecord = errors.New("usage record malformed")
)

// Store reads and writes the usage record at a fixed path.
// Only one process is expected to touch the file while running.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store for the record at path. The file need not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the usage record.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted totals. The returned totals are always usable: when the
// record is absent, unreadable or malformed they are seeded from fallback, and a
// missing or invalid field is seeded individually while the valid one is kept.
// The error only describes what went wrong, for logging.
func (s *Store) Load(fallback counters.Snapshot) (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := Totals{Uploaded: fallback.BytesSent, Downloaded: fallback.BytesReceived}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return seeded, fmt.Errorf("read usage record: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return seeded, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if fields == nil {
		return seeded, fmt.Errorf("%w: not an object", ErrMalformedRecord)
	}

	totals := seeded
	var invalid []string

	if v, ok := parseCounter(fields[keyUpload]); ok {
		totals.Uploaded = v
	} else {
		invalid = append(invalid, keyUpload)
	}
	if v, ok := parseCounter(fields[keyDownload]); ok {
		totals.Downloaded = v
	} else {
		invalid = append(invalid, keyDownload)
	}

	if len(invalid) > 0 {
		return totals, fmt.Errorf("%w: %s", ErrIncompleteRecord, strings.Join(invalid, ", "))
	}
	return totals, nil
}

// Save writes the totals and syncs them to disk, overwriting the previous record.
func (s *Store) Save(totals Totals) error {
	data, err := json.Marshal(record{
		TotalUpload:   totals.Uploaded,
		TotalDownload: totals.Downloaded,
	})
	if err != nil {
		return fmt.Errorf("marshal usage record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fileutil.DurableWrite(s.path, data, 0600); err != nil {
		return fmt.Errorf("save usage record: %w", err)
	}
	return nil
}

// Reset zeroes the totals and persists them immediately.
// The zero totals are returned even if persisting fails.
func (s *Store) Reset() (Totals, error) {
	return Totals{}, s.Save(Totals{})
}

// parseCounter accepts a non-negative JSON integer. Integral floats such as
// 5000.0 are accepted too; anything else (strings, null, negatives) is rejected.
func parseCounter(raw json.RawMessage) (uint64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	text := string(raw)

	if v, err := strconv.ParseUint(text, 10, 64); err == nil {
		return v, true
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}
