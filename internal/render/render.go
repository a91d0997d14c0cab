// Package render fills operator templates such as "{icon}{temp}°{units}"
// from explicit field maps.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Fields maps placeholder names to their rendered values.
type Fields map[string]string

// ErrBadTemplate is returned for a template with an unterminated "{" or a
// single "}".
var ErrBadTemplate = errors.New("malformed template")

// Literal braces are passed to fasttemplate as tags no placeholder can
// have: "{{" becomes "{{}" and "}}" becomes "{}".
const (
	openBraceTag  = "{"
	closeBraceTag = ""
)

// PlaceholderError reports a placeholder with no matching field.
type PlaceholderError struct {
	Name     string
	Template string
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("unknown placeholder {%s} in template %q", e.Name, e.Template)
}

// Format replaces every {name} in tmpl with fields[name]. "{{" and "}}"
// stand for literal braces.
func Format(tmpl string, fields Fields) (string, error) {
	escaped, err := escapeBraces(tmpl)
	if err != nil {
		return "", err
	}
	t, err := fasttemplate.NewTemplate(escaped, "{", "}")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadTemplate, err)
	}
	return t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		switch tag {
		case openBraceTag:
			return io.WriteString(w, "{")
		case closeBraceTag:
			return io.WriteString(w, "}")
		}
		v, ok := fields[tag]
		if !ok {
			return 0, &PlaceholderError{Name: tag, Template: tmpl}
		}
		return io.WriteString(w, v)
	})
}

func escapeBraces(tmpl string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		switch c := tmpl[i]; c {
		case '{':
			if strings.HasPrefix(tmpl[i:], "{{") {
				b.WriteString("{" + openBraceTag + "}")
				i++
				continue
			}
			end := strings.IndexAny(tmpl[i+1:], "{}")
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated { at offset %d", ErrBadTemplate, i)
			}
			if tmpl[i+1+end] == '{' {
				return "", fmt.Errorf("%w: unexpected { at offset %d", ErrBadTemplate, i+1+end)
			}
			if end == 0 {
				return "", &PlaceholderError{Template: tmpl}
			}
			b.WriteString(tmpl[i : i+end+2])
			i += end + 1
		case '}':
			if strings.HasPrefix(tmpl[i:], "}}") {
				b.WriteString("{" + closeBraceTag + "}")
				i++
				continue
			}
			return "", fmt.Errorf("%w: single } at offset %d", ErrBadTemplate, i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// Today renders the current condition.
func Today(tmpl, icon, units string, fields Fields) (string, error) {
	return Format(tmpl, withIcon(fields, icon, units))
}

// Entry renders a single forecast day.
func Entry(tmpl, icon, units string, fields Fields) (string, error) {
	return Format(tmpl, withIcon(fields, icon, units))
}

// Join concatenates rendered forecast entries.
func Join(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// Status renders the overall template from the today and forecasts texts.
func Status(tmpl, today, forecasts string) (string, error) {
	return Format(tmpl, Fields{
		"today":     today,
		"forecasts": forecasts,
	})
}

func withIcon(fields Fields, icon, units string) Fields {
	out := make(Fields, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["icon"] = icon
	out["units"] = units
	return out
}
