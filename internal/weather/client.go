package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the public YQL endpoint serving weather.forecast.
const DefaultBaseURL = "https://query.yahooapis.com/v1/public/yql"

var tracer = otel.Tracer("github.com/swelljoe/wthrbar/internal/weather")

// Query describes one forecast request and how to reduce its result.
type Query struct {
	Location     string
	Units        Units
	IncludeToday bool
	Days         int
}

// Client handles weather API interactions
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a client whose requests give up after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := os.Getenv("WTHRBAR_USER_AGENT")
	if userAgent == "" {
		userAgent = "wthrbar/1.0"
	}

	return &Client{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if transient(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if transient(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return data, nil
}

func (c *Client) forecastURL(location string, units Units) string {
	params := url.Values{}
	params.Set("q", fmt.Sprintf(`select * from weather.forecast where woeid="%s" and u="%s"`, location, units.Code()))
	params.Set("format", "json")
	params.Set("env", "store://datatables.org/alltableswithkeys")
	return c.BaseURL + "?" + params.Encode()
}

// Fetch requests the forecast for q.Location and returns today's condition
// together with the forecast list reduced per q. Connection failures and
// timeouts come back wrapping ErrUnavailable; a non-2xx answer is a
// *StatusError.
func (c *Client) Fetch(ctx context.Context, q Query) (*Report, error) {
	ctx, span := tracer.Start(ctx, "weather.Fetch", trace.WithAttributes(
		attribute.String("weather.location", q.Location),
		attribute.String("weather.units", q.Units.Code()),
	))
	defer span.End()

	data, err := c.get(ctx, c.forecastURL(q.Location, q.Units))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report, err := parseReport(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	report.Forecasts = trimForecasts(report.Forecasts, q.IncludeToday, q.Days)
	span.SetAttributes(attribute.Int("weather.forecasts", len(report.Forecasts)))
	return report, nil
}

// parseReport extracts query.results.channel.item from a YQL answer.
// Codes may arrive as JSON strings or numbers; other values are kept as
// text.
func parseReport(data []byte) (*Report, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}

	item := gjson.GetBytes(data, "query.results.channel.item")
	if !item.IsObject() {
		return nil, fmt.Errorf("%w: no forecast item in response", ErrMalformedResponse)
	}

	cond := item.Get("condition")
	code, text, err := classifiable(cond)
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}
	report := &Report{
		Today: Condition{
			Code: code,
			Date: textField(cond, "date"),
			Temp: textField(cond, "temp"),
			Text: text,
		},
	}

	for i, f := range item.Get("forecast").Array() {
		code, text, err := classifiable(f)
		if err != nil {
			return nil, fmt.Errorf("forecast %d: %w", i, err)
		}
		report.Forecasts = append(report.Forecasts, Forecast{
			Code: code,
			Date: textField(f, "date"),
			Day:  textField(f, "day"),
			High: textField(f, "high"),
			Low:  textField(f, "low"),
			Text: text,
		})
	}
	return report, nil
}

// classifiable returns the code and text every entry needs for its icon.
func classifiable(obj gjson.Result) (int, string, error) {
	code, err := intField(obj, "code")
	if err != nil {
		return 0, "", err
	}
	text := obj.Get("text")
	if text.Type != gjson.String {
		return 0, "", fmt.Errorf("%w: missing text", ErrMalformedResponse)
	}
	return code, text.Str, nil
}

// textField keeps a value as the API wrote it: "-4" stays "-4" whether it
// came as a string or a number. Missing and null values are empty.
func textField(obj gjson.Result, name string) string {
	v := obj.Get(name)
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return ""
}

func intField(obj gjson.Result, name string) (int, error) {
	v := obj.Get(name)
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), nil
	case gjson.String:
		n, err := strconv.Atoi(v.Str)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not a number", ErrMalformedResponse, name, v.Str)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: missing %s", ErrMalformedResponse, name)
}

// trimForecasts drops today's own entry unless includeToday is set, then
// keeps at most days entries.
func trimForecasts(forecasts []Forecast, includeToday bool, days int) []Forecast {
	if !includeToday && len(forecasts) > 0 {
		forecasts = forecasts[1:]
	}
	if days < 0 {
		days = 0
	}
	if len(forecasts) > days {
		forecasts = forecasts[:days]
	}
	return forecasts
}
