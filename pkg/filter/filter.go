// Package filter restricts posts to an inclusive creation date range.
package filter

import (
	"fmt"
	"strings"
	"time"

	errs "yddownloader/pkg/errors"
	"yddownloader/pkg/yodayo"
)

// Layout is the date format accepted from the user
const Layout = "2006-01-02T15:04:05Z"

// DateRange is an inclusive time window. Start never follows End once the
// range has been built by ParseRange or NewRange.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewRange validates start and end and returns them as a UTC range
func NewRange(start, end time.Time) (DateRange, error) {
	start, end = start.UTC(), end.UTC()
	if start.After(end) {
		return DateRange{}, errs.New(errs.ErrorTypeValidation, errs.MsgInvalidRange)
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseRange parses user supplied start and end dates
func ParseRange(start, end string) (DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, errs.New(errs.ErrorTypeValidation, errs.MsgMissingInput)
	}

	s, err := ParseTimestamp(start)
	if err != nil {
		return DateRange{}, errs.New(errs.ErrorTypeValidation, errs.MsgInvalidDate)
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return DateRange{}, errs.New(errs.ErrorTypeValidation, errs.MsgInvalidDate)
	}

	return NewRange(s, e)
}

// Contains reports whether t falls inside the range, bounds included
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(Layout), r.End.Format(Layout))
}

// ParseTimestamp parses an RFC 3339 timestamp, with or without fractional
// seconds, and returns it in UTC.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ByDate returns the posts created within r, keeping their order. A post
// with an unparsable timestamp fails the whole call.
func ByDate(posts []yodayo.Post, r DateRange) ([]yodayo.Post, error) {
	matched := make([]yodayo.Post, 0, len(posts))
	for _, post := range posts {
		createdAt, err := ParseTimestamp(post.CreatedAt)
		if err != nil {
			return nil, &errs.Error{
				Type:    errs.ErrorTypeParsing,
				Message: fmt.Sprintf("invalid created_at %q on post %s", post.CreatedAt, post.UUID),
				Err:     err,
			}
		}
		if r.Contains(createdAt) {
			matched = append(matched, post)
		}
	}
	return matched, nil
}
