// Package poller plays the part of a status bar host: it invokes the
// weather service on a schedule and prints one line per tick, reusing the
// last text until its valid-until time has passed.
package poller

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/swelljoe/wthrbar/internal/weather"
)

// DefaultSpec ticks once a second.
const DefaultSpec = "@every 1s"

// Source produces a status result for a point in time.
type Source interface {
	Status(ctx context.Context, now time.Time) (weather.Result, error)
}

// Poller drives a Source.
type Poller struct {
	source Source
	out    io.Writer
	now    func() time.Time

	mu   sync.Mutex
	last weather.Result
}

// New creates a poller writing to out.
func New(source Source, out io.Writer) *Poller {
	return &Poller{
		source: source,
		out:    out,
		now:    time.Now,
	}
}

// Tick prints the current status line, asking the source for a fresh one
// only once the previous result has expired. After a failed update the
// source is left alone for weather.RetryInterval.
func (p *Poller) Tick(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Before(p.last.ValidUntil) {
		_, err := fmt.Fprintln(p.out, p.last.Text)
		return err
	}

	res, err := p.source.Status(ctx, now)
	if err != nil {
		p.last.ValidUntil = now.Add(weather.RetryInterval)
		return err
	}
	p.last = res

	_, err = fmt.Fprintln(p.out, res.Text)
	return err
}

// Run ticks on the cron spec until ctx is cancelled.
func (p *Poller) Run(ctx context.Context, spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		if err := p.Tick(ctx); err != nil {
			log.Printf("Status update failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule status updates: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
