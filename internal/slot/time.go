package slot

import (
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

var absoluteLayouts = []string{
	"2006/01/02 15:04",
	"2006/1/2 15:04",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02",
}

// Month-name dates; the year-less forms resolve to the current year.
var (
	monthDayYearLayouts = []string{"January 2 2006", "Jan 2 2006"}
	monthDayLayouts     = []string{"January 2", "Jan 2"}
)

var (
	shortDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	ordinal   = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)
)

const monthName = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

// Longer forms come first so a date with a clock time is not cut short.
var timeHint = regexp.MustCompile(`(?i)\b(?:` +
	`\d{4}[-/]\d{1,2}[-/]\d{1,2}(?:\s+\d{1,2}:\d{2})?` +
	`|` + monthName + `\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?` +
	`|\d{1,2}/\d{1,2}` +
	`|now|today|yesterday|tomorrow` +
	`|(?:this|last|next)\s+(?:week|month|year)` +
	`)\b`)

// Normalizer canonicalizes time expressions relative to its clock.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer. A nil clock uses time.Now.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Time converts expressions like "yesterday", "last month" or "2024/05/01 12:00" into
// the canonical "yyyy/MM/dd HH:mm" form.
func (n *Normalizer) Time(raw string) (string, error) {
	t, err := n.ParseTime(raw)
	if err != nil {
		return "", err
	}
	return t.Format(model.TimeLayout), nil
}

// ParseTime resolves a time expression.
func (n *Normalizer) ParseTime(raw string) (time.Time, error) {
	text := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	now := n.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, now.Location())

	switch text {
	case "":
		return time.Time{}, common.ValidationError(model.FieldTime, raw, nil)
	case "now", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "this week":
		return monday(today), nil
	case "last week":
		return monday(today).AddDate(0, 0, -7), nil
	case "next week":
		return monday(today).AddDate(0, 0, 7), nil
	case "this month":
		return firstOfMonth(today, 0), nil
	case "last month":
		return firstOfMonth(today, -1), nil
	case "next month":
		return firstOfMonth(today, 1), nil
	case "this year":
		return firstOfYear(today, 0), nil
	case "last year":
		return firstOfYear(today, -1), nil
	case "next year":
		return firstOfYear(today, 1), nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, text, now.Location()); err == nil {
			return t, nil
		}
	}

	// "may 3rd, 2024" -> "may 3 2024"
	plain := strings.Join(strings.Fields(strings.ReplaceAll(ordinal.ReplaceAllString(text, "$1"), ",", " ")), " ")
	for _, layout := range monthDayYearLayouts {
		if t, err := time.ParseInLocation(layout, plain, now.Location()); err == nil {
			return t, nil
		}
	}
	for _, layout := range monthDayLayouts {
		if t, err := time.ParseInLocation(layout, plain, now.Location()); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location()), nil
		}
	}

	if m := shortDate.FindStringSubmatch(text); m != nil {
		if t, err := time.ParseInLocation("2006/1/2", now.Format("2006")+"/"+m[1]+"/"+m[2], now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, common.ValidationError(model.FieldTime, raw, nil)
}

// FindTime returns the first date or relative time mentioned in text, or "".
// "it was yesterday" yields "yesterday".
func FindTime(text string) string {
	return timeHint.FindString(text)
}

func monday(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func firstOfMonth(t time.Time, months int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), 0, 0, t.Location())
}

func firstOfYear(t time.Time, years int) time.Time {
	return time.Date(t.Year()+years, time.January, 1, t.Hour(), t.Minute(), 0, 0, t.Location())
}
