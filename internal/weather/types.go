package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Units selects the temperature scale requested from the API.
type Units string

const (
	Celsius    Units = "c"
	Fahrenheit Units = "f"
)

// ParseUnits accepts "c", "C", "celsius", "f", "Fahrenheit" and so on.
// Only the first letter is significant.
func ParseUnits(s string) (Units, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "", fmt.Errorf("empty units")
	}
	switch s[0] {
	case 'c':
		return Celsius, nil
	case 'f':
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("unknown units %q", s)
}

// Code is the single-letter unit code sent with the request.
func (u Units) Code() string {
	return string(u)
}

// Label is the unit shown in rendered text ("C" or "F").
func (u Units) Label() string {
	return strings.ToUpper(string(u))
}

// Condition is the current weather for the location. Apart from Code,
// values are the API's own text ("-4", "N/A"); an empty value means the
// field was absent.
type Condition struct {
	Code int
	Date string
	Temp string
	Text string
}

// Fields returns the placeholders a today template may reference. Absent
// fields are left out so a template naming them fails to render.
func (c Condition) Fields() map[string]string {
	fields := map[string]string{
		"code": strconv.Itoa(c.Code),
		"text": c.Text,
	}
	setPresent(fields, "date", c.Date)
	setPresent(fields, "temp", c.Temp)
	return fields
}

// Forecast is one day of the forecast list.
type Forecast struct {
	Code int
	Date string
	Day  string
	High string
	Low  string
	Text string
}

// Fields returns the placeholders a forecast template may reference.
func (f Forecast) Fields() map[string]string {
	fields := map[string]string{
		"code": strconv.Itoa(f.Code),
		"text": f.Text,
	}
	setPresent(fields, "date", f.Date)
	setPresent(fields, "day", f.Day)
	setPresent(fields, "high", f.High)
	setPresent(fields, "low", f.Low)
	return fields
}

// Report is the parsed and trimmed outcome of one successful fetch.
type Report struct {
	Today     Condition
	Forecasts []Forecast
}

// Result is what a host gets back from one status invocation.
type Result struct {
	Text       string
	ValidUntil time.Time
}

func setPresent(fields map[string]string, name, value string) {
	if value != "" {
		fields[name] = value
	}
}
