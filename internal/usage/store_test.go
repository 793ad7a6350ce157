package usage

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shini4i/moninet/internal/counters"
)

var fallback = counters.Snapshot{BytesSent: 1_000_000, BytesReceived: 2_000_000}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), DefaultFileName))
}

func writeRecord(t *testing.T, s *Store, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0600))
}

func TestLoad_NoFileSeedsFromFallback(t *testing.T) {
	s := newTestStore(t)

	totals, err := s.Load(fallback)
	assert.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, Totals{Uploaded: 1_000_000, Downloaded: 2_000_000}, totals)
}

func TestLoad_ValidRecord(t *testing.T) {
	s := newTestStore(t)
	writeRecord(t, s, `{"total_upload": 5000, "total_download": 7000}`)

	totals, err := s.Load(fallback)
	require.NoError(t, err)
	assert.Equal(t, Totals{Uploaded: 5000, Downloaded: 7000}, totals)
}

func TestLoad_PartialRecord(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Totals
	}{
		{
			name:     "missing download",
			content:  `{"total_upload": 5000}`,
			expected: Totals{Uploaded: 5000, Downloaded: 2_000_000},
		},
		{
			name:     "missing upload",
			content:  `{"total_download": 7000}`,
			expected: Totals{Uploaded: 1_000_000, Downloaded: 7000},
		},
		{
			name:     "download is a string",
			content:  `{"total_upload": 5000, "total_download": "7000"}`,
			expected: Totals{Uploaded: 5000, Downloaded: 2_000_000},
		},
		{
			name:     "download is null",
			content:  `{"total_upload": 5000, "total_download": null}`,
			expected: Totals{Uploaded: 5000, Downloaded: 2_000_000},
		},
		{
			name:     "upload is negative",
			content:  `{"total_upload": -1, "total_download": 7000}`,
			expected: Totals{Uploaded: 1_000_000, Downloaded: 7000},
		},
		{
			name:     "upload is fractional",
			content:  `{"total_upload": 1.5, "total_download": 7000}`,
			expected: Totals{Uploaded: 1_000_000, Downloaded: 7000},
		},
		{
			name:     "empty object",
			content:  `{}`,
			expected: Totals{Uploaded: 1_000_000, Downloaded: 2_000_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writeRecord(t, s, tt.content)

			totals, err := s.Load(fallback)
			assert.ErrorIs(t, err, ErrIncompleteRecord)
			assert.Equal(t, tt.expected, totals)
		})
	}
}

func TestLoad_AcceptsIntegralFloatsAndExtraKeys(t *testing.T) {
	s := newTestStore(t)
	writeRecord(t, s, `{"total_upload": 5000.0, "total_download": 7e3, "version": 2}`)

	totals, err := s.Load(fallback)
	require.NoError(t, err)
	assert.Equal(t, Totals{Uploaded: 5000, Downloaded: 7000}, totals)
}

func TestLoad_MalformedRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"total_upload": 50`},
		{"empty file", ``},
		{"array", `[1, 2]`},
		{"null", `null`},
		{"garbage", "\x00\x01\x02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writeRecord(t, s, tt.content)

			totals, err := s.Load(fallback)
			assert.ErrorIs(t, err, ErrMalformedRecord)
			assert.Equal(t, Totals{Uploaded: 1_000_000, Downloaded: 2_000_000}, totals)
		})
	}
}

func TestSave_WritesExactRecord(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(Totals{Uploaded: 1_100_000, Downloaded: 2_050_000}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Len(t, fields, 2)
	assert.JSONEq(t, `{"total_upload": 1100000, "total_download": 2050000}`, string(data))
}

func TestSave_CreatesMissingDirectory(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "data", "moninet", DefaultFileName))

	require.NoError(t, s.Save(Totals{Uploaded: 1, Downloaded: 2}))

	totals, err := s.Load(counters.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, Totals{Uploaded: 1, Downloaded: 2}, totals)
}

func TestSave_Failure(t *testing.T) {
	// A directory in place of the record cannot be opened for writing.
	s := NewStore(t.TempDir())

	err := s.Save(Totals{Uploaded: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save usage record")
}

func TestLoadSaveLoad_Idempotent(t *testing.T) {
	s := newTestStore(t)
	writeRecord(t, s, `{"total_upload": 18446744073709551615, "total_download": 123456789}`)

	first, err := s.Load(fallback)
	require.NoError(t, err)

	require.NoError(t, s.Save(first))

	second, err := s.Load(counters.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(18446744073709551615), second.Uploaded)
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(Totals{Uploaded: 5000, Downloaded: 7000}))

	totals, err := s.Reset()
	require.NoError(t, err)
	assert.True(t, totals.IsZero())

	// Simulated restart: the zeroed record wins over the fallback.
	reloaded, err := s.Load(fallback)
	require.NoError(t, err)
	assert.Equal(t, Totals{}, reloaded)
}

func TestTotals_Add(t *testing.T) {
	totals := Totals{Uploaded: 1_000_000, Downloaded: 2_000_000}.Add(100_000, 50_000)
	assert.Equal(t, Totals{Uploaded: 1_100_000, Downloaded: 2_050_000}, totals)
	assert.False(t, totals.IsZero())
}
