package weather

import "strings"

// IconSet holds the five symbols a forecast can be classified into.
type IconSet struct {
	Sun     string
	Cloud   string
	Rain    string
	Snow    string
	Default string
}

// DefaultIcons is the symbol set used when none is configured.
var DefaultIcons = IconSet{
	Sun:     "☀",
	Cloud:   "☁",
	Rain:    "☂",
	Snow:    "☃",
	Default: "?",
}

// Condition code groups, see https://developer.yahoo.com/weather/#codes
var (
	sunCodes   = codeSet(31, 32, 33, 34, 36)
	cloudCodes = codeSet(19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 44)
	rainCodes  = codeSet(0, 1, 2, 3, 4, 5, 6, 9, 11, 12, 37, 38, 39, 40, 45, 47)
	snowCodes  = codeSet(7, 8, 10, 13, 14, 15, 16, 17, 18, 35, 41, 42, 43, 46)
)

func codeSet(codes ...int) map[int]struct{} {
	m := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

// Classify maps a condition code and description to an icon. Rules are
// checked in order sun, cloud, rain, snow and the first match wins, so a
// "Mostly Sunny" text beats a code from any later group.
func (s IconSet) Classify(code int, text string) string {
	text = strings.ToLower(text)
	has := func(set map[int]struct{}) bool {
		_, ok := set[code]
		return ok
	}

	switch {
	case strings.Contains(text, "sun") || has(sunCodes):
		return s.Sun
	case strings.Contains(text, "cloud") || has(cloudCodes):
		return s.Cloud
	case strings.Contains(text, "rain") || has(rainCodes):
		return s.Rain
	case strings.Contains(text, "snow") || has(snowCodes):
		return s.Snow
	}
	return s.Default
}
