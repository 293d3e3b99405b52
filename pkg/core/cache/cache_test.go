package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCache(t *testing.T) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New(t.TempDir(), WithClock(clock.Now)), clock
}

func counter(payload string) (func() (json.RawMessage, error), *int) {
	calls := 0
	return func() (json.RawMessage, error) {
		calls++
		return json.RawMessage(payload), nil
	}, &calls
}

func TestKey(t *testing.T) {
	assert.Equal(t, "CompanyFacts_0000320193", Key("CompanyFacts", "0000320193"))
	assert.Equal(t, "Frames_us-gaap_Assets_2024", Key("Frames", "us-gaap", "Assets", 2024))
	assert.Equal(t, "CompanyTickers", Key("CompanyTickers"))
}

func TestGetOrComputeRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	compute, calls := counter(`{"a": 1, "b": [1, 2]}`)

	first, err := c.GetOrCompute("CompanyFacts", time.Hour, []any{"0000320193"}, compute)
	require.NoError(t, err)
	second, err := c.GetOrCompute("CompanyFacts", time.Hour, []any{"0000320193"}, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, string(first), string(second))
	assert.JSONEq(t, `{"a":1,"b":[1,2]}`, string(second))
}

func TestGetOrComputeDistinguishesArgs(t *testing.T) {
	c, _ := newTestCache(t)
	compute, calls := counter(`{}`)

	_, err := c.GetOrCompute("CompanyFacts", time.Hour, []any{"0000320193"}, compute)
	require.NoError(t, err)
	_, err = c.GetOrCompute("CompanyFacts", time.Hour, []any{"0000789019"}, compute)
	require.NoError(t, err)
	_, err = c.GetOrCompute("CompanySubmissions", time.Hour, []any{"0000320193"}, compute)
	require.NoError(t, err)

	assert.Equal(t, 3, *calls)
}

func TestGetOrComputeExpiry(t *testing.T) {
	c, clock := newTestCache(t)
	payloads := []string{`{"v":1}`, `{"v":2}`}
	calls := 0
	compute := func() (json.RawMessage, error) {
		p := payloads[calls]
		calls++
		return json.RawMessage(p), nil
	}

	data, err := c.GetOrCompute("Frames", time.Hour, nil, compute)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(data))

	clock.t = clock.t.Add(time.Hour)
	data, err = c.GetOrCompute("Frames", time.Hour, nil, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "entry exactly at ttl is still fresh")
	assert.JSONEq(t, `{"v":1}`, string(data))

	clock.t = clock.t.Add(time.Second)
	data, err = c.GetOrCompute("Frames", time.Hour, nil, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.JSONEq(t, `{"v":2}`, string(data), "expired entry is replaced by the recomputed payload")

	data, err = c.GetOrCompute("Frames", time.Hour, nil, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "recomputed entry is served from disk")
	assert.JSONEq(t, `{"v":2}`, string(data))
}

func TestGetOrComputeZeroTTLNeverExpires(t *testing.T) {
	c, clock := newTestCache(t)
	compute, calls := counter(`1`)

	_, err := c.GetOrCompute("x", 0, nil, compute)
	require.NoError(t, err)
	clock.t = clock.t.AddDate(5, 0, 0)
	_, err = c.GetOrCompute("x", 0, nil, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, *calls)
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c, _ := newTestCache(t)
	boom := errors.New("boom")

	_, err := c.GetOrCompute("x", time.Hour, nil, func() (json.RawMessage, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	files, _ := filepath.Glob(filepath.Join(c.Dir(), "*.json"))
	assert.Empty(t, files)
}

func TestGetOrComputeCorruptFileIsMiss(t *testing.T) {
	c, _ := newTestCache(t)
	compute, calls := counter(`{"ok":true}`)

	require.NoError(t, os.MkdirAll(c.Dir(), 0755))
	require.NoError(t, os.WriteFile(c.filePath(Key("x")), []byte("{not json"), 0644))

	data, err := c.GetOrCompute("x", time.Hour, nil, compute)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.Equal(t, 1, *calls)

	// the corrupt file was replaced by a good entry
	_, err = c.GetOrCompute("x", time.Hour, nil, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
}

func TestGetOrComputeWriteFailureSwallowed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(dir, []byte("file, not a dir"), 0644))
	c := New(dir)

	data, err := c.GetOrCompute("x", time.Hour, nil, func() (json.RawMessage, error) {
		return json.RawMessage(`[1]`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(data))
}

func TestEntryLayout(t *testing.T) {
	c, clock := newTestCache(t)
	_, err := c.GetOrCompute("CompanyConcept", time.Hour, []any{"0000320193", "us-gaap", "Assets"}, func() (json.RawMessage, error) {
		return json.RawMessage(`{"tag":"Assets"}`), nil
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(c.filePath("CompanyConcept_0000320193_us-gaap_Assets"))
	require.NoError(t, err)

	var entry Entry
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "CompanyConcept_0000320193_us-gaap_Assets", entry.CacheKey)
	assert.True(t, entry.CachedAt.Equal(clock.t))
	assert.JSONEq(t, `{"tag":"Assets"}`, string(entry.Data))
}

func TestClear(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		removed   int
		remaining int
	}{
		{name: "all", pattern: "", removed: 3, remaining: 0},
		{name: "by function", pattern: "CompanyFacts", removed: 2, remaining: 1},
		{name: "by cik", pattern: "0000789019", removed: 1, remaining: 2},
		{name: "no match", pattern: "Frames", removed: 0, remaining: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCache(t)
			compute, _ := counter(`{}`)
			for _, args := range [][]any{{"0000320193"}, {"0000789019"}} {
				_, err := c.GetOrCompute("CompanyFacts", time.Hour, args, compute)
				require.NoError(t, err)
			}
			_, err := c.GetOrCompute("CompanySubmissions", time.Hour, []any{"0000320193"}, compute)
			require.NoError(t, err)

			n, err := c.Clear(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.removed, n)

			files, _ := filepath.Glob(filepath.Join(c.Dir(), "*.json"))
			assert.Len(t, files, tt.remaining)
		})
	}
}

func TestClearSkipsCorruptFiles(t *testing.T) {
	c, _ := newTestCache(t)
	compute, _ := counter(`{}`)
	_, err := c.GetOrCompute("CompanyFacts", time.Hour, []any{"0000320193"}, compute)
	require.NoError(t, err)

	corrupt := filepath.Join(c.Dir(), "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{{{"), 0644))

	n, err := c.Clear("CompanyFacts")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, corrupt)
}

func TestClearMissingDir(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope"))
	n, err := c.Clear("")
	require.NoError(t, err)
	assert.Zero(t, n)
}
