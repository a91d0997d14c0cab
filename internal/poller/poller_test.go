package poller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swelljoe/wthrbar/internal/weather"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	texts []string
	ttl   time.Duration
	err   error
}

func (s *countingSource) Status(ctx context.Context, now time.Time) (weather.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return weather.Result{}, s.err
	}
	text := s.texts[(s.calls-1)%len(s.texts)]
	return weather.Result{Text: text, ValidUntil: now.Add(s.ttl)}, nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTickReusesTextUntilExpiry(t *testing.T) {
	src := &countingSource{texts: []string{"☀", "☂"}, ttl: 30 * time.Second}
	var out bytes.Buffer
	p := New(src, &out)

	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }

	require.NoError(t, p.Tick(context.Background()))
	now = now.Add(10 * time.Second)
	require.NoError(t, p.Tick(context.Background()))
	now = now.Add(20 * time.Second)
	require.NoError(t, p.Tick(context.Background()))

	assert.Equal(t, 2, src.calls)
	assert.Equal(t, "☀\n☀\n☂\n", out.String())
}

func TestTickEmptyRetryResult(t *testing.T) {
	src := &countingSource{texts: []string{""}, ttl: weather.RetryInterval}
	var out bytes.Buffer
	p := New(src, &out)
	p.now = func() time.Time { return time.Unix(1000, 0) }

	require.NoError(t, p.Tick(context.Background()))
	require.NoError(t, p.Tick(context.Background()))

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, "\n\n", out.String())
}

func TestTickError(t *testing.T) {
	src := &countingSource{err: weather.ErrMissingLocation}
	var out bytes.Buffer
	p := New(src, &out)

	err := p.Tick(context.Background())
	assert.True(t, errors.Is(err, weather.ErrMissingLocation))
	assert.Empty(t, out.String())
}

func TestTickBacksOffAfterError(t *testing.T) {
	src := &countingSource{texts: []string{"☀"}, ttl: time.Hour}
	var out bytes.Buffer
	p := New(src, &out)

	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }

	require.NoError(t, p.Tick(context.Background()))
	now = now.Add(time.Hour)
	src.err = errors.New("weather API error: 500 Internal Server Error")

	require.Error(t, p.Tick(context.Background()))
	assert.Equal(t, 2, src.calls)

	for i := 0; i < 29; i++ {
		now = now.Add(time.Second)
		require.NoError(t, p.Tick(context.Background()))
	}
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, "☀\n"+strings.Repeat("☀\n", 29), out.String())

	now = now.Add(time.Second)
	src.err = nil
	require.NoError(t, p.Tick(context.Background()))
	assert.Equal(t, 3, src.calls)
}

func TestRun(t *testing.T) {
	src := &countingSource{texts: []string{"☁"}, ttl: time.Hour}
	out := &syncBuffer{}
	p := New(src, out)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx, DefaultSpec))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.GreaterOrEqual(t, len(lines), 1)
	for _, l := range lines {
		assert.Equal(t, "☁", l)
	}
	assert.Equal(t, 1, src.calls)
}

func TestRunInvalidSpec(t *testing.T) {
	p := New(&countingSource{texts: []string{""}}, &bytes.Buffer{})

	err := p.Run(context.Background(), "not a spec")
	assert.Error(t, err)
}
