package service

import (
	"strings"
	"time"
)

const DisplayDateLayout = "02/01/2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate renders a backend date as dd/mm/yyyy. Unparseable text is returned as is.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DisplayDateLayout)
		}
	}
	return raw
}
