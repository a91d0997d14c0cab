package weather

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/swelljoe/wthrbar/internal/render"
)

// RetryInterval is how soon the host should poll again after a fetch
// could not reach the weather service. It does not follow PollInterval.
const RetryInterval = 30 * time.Second

// Fetcher retrieves one trimmed forecast report.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (*Report, error)
}

// Options is the immutable configuration of a Service.
type Options struct {
	Location       string
	Units          Units
	PollInterval   time.Duration
	ForecastDays   int
	IncludeToday   bool
	Separator      string
	Format         string
	FormatToday    string
	FormatForecast string
	Icons          IconSet
}

// Service turns a forecast into status line text
type Service struct {
	opts    Options
	fetcher Fetcher
}

// NewService creates a new weather status service
func NewService(opts Options, fetcher Fetcher) *Service {
	return &Service{
		opts:    opts,
		fetcher: fetcher,
	}
}

// Status fetches the forecast and renders it. When the weather service
// cannot be reached the text is empty and the result is only valid for
// RetryInterval. Configuration, HTTP status and template errors are
// returned as is.
func (s *Service) Status(ctx context.Context, now time.Time) (Result, error) {
	if s.opts.Location == "" {
		return Result{}, ErrMissingLocation
	}

	report, err := s.fetcher.Fetch(ctx, Query{
		Location:     s.opts.Location,
		Units:        s.opts.Units,
		IncludeToday: s.opts.IncludeToday,
		Days:         s.opts.ForecastDays,
	})
	if errors.Is(err, ErrUnavailable) {
		log.Printf("Forecast unavailable, retrying in %s: %v", RetryInterval, err)
		return Result{ValidUntil: now.Add(RetryInterval)}, nil
	}
	if err != nil {
		return Result{}, err
	}

	text, err := s.renderReport(report)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Text:       text,
		ValidUntil: now.Add(s.opts.PollInterval),
	}, nil
}

func (s *Service) renderReport(report *Report) (string, error) {
	units := s.opts.Units.Label()

	today, err := render.Today(s.opts.FormatToday,
		s.opts.Icons.Classify(report.Today.Code, report.Today.Text),
		units, report.Today.Fields())
	if err != nil {
		return "", err
	}

	entries := make([]string, 0, len(report.Forecasts))
	for _, f := range report.Forecasts {
		entry, err := render.Entry(s.opts.FormatForecast, s.opts.Icons.Classify(f.Code, f.Text), units, f.Fields())
		if err != nil {
			return "", err
		}
		entries = append(entries, entry)
	}

	return render.Status(s.opts.Format, today, render.Join(entries, s.opts.Separator))
}
