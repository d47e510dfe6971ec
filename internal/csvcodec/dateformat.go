package csvcodec

import (
	"strings"
	"time"
)

// DateFormat selects how purchase and disposal dates are written
type DateFormat string

const (
	DateFormatISO      DateFormat = "yyyy-MM-dd"
	DateFormatSlash    DateFormat = "yyyy/MM/dd"
	DateFormatDot      DateFormat = "yyyy.MM.dd"
	DateFormatJapanese DateFormat = "yyyy年MM月dd日"
)

// DateFormats is the order in which imported dates are tried
var DateFormats = []DateFormat{
	DateFormatISO,
	DateFormatSlash,
	DateFormatDot,
	DateFormatJapanese,
}

var dateFormatNames = map[string]DateFormat{
	"iso":      DateFormatISO,
	"slash":    DateFormatSlash,
	"dot":      DateFormatDot,
	"japanese": DateFormatJapanese,
}

// ParseDateFormat accepts a short name (iso, slash, dot, japanese) or the pattern itself
func ParseDateFormat(s string) (DateFormat, bool) {
	if f, ok := dateFormatNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, true
	}
	for _, f := range DateFormats {
		if string(f) == s {
			return f, true
		}
	}
	return DateFormatISO, false
}

// layout is the Go layout used for writing dates
func (f DateFormat) layout() string {
	switch f {
	case DateFormatSlash:
		return "2006/01/02"
	case DateFormatDot:
		return "2006.01.02"
	case DateFormatJapanese:
		return "2006年01月02日"
	default:
		return "2006-01-02"
	}
}

// parseLayout also accepts one-digit months and days
func (f DateFormat) parseLayout() string {
	switch f {
	case DateFormatSlash:
		return "2006/1/2"
	case DateFormatDot:
		return "2006.1.2"
	case DateFormatJapanese:
		return "2006年1月2日"
	default:
		return "2006-1-2"
	}
}

// Format renders t as a calendar date in loc
func (f DateFormat) Format(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(f.layout())
}

// parseDate tries the hint first, then every known format in order.
func parseDate(s string, hint DateFormat, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	order := make([]DateFormat, 0, len(DateFormats)+1)
	order = append(order, hint)
	for _, f := range DateFormats {
		if f != hint {
			order = append(order, f)
		}
	}

	for _, f := range order {
		if t, err := time.ParseInLocation(f.parseLayout(), s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
