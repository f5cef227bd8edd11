package checker

import "time"

// Status is the outcome of a probe as reported by the backend.
type Status string

const (
	StatusOK      Status = "ok"
	StatusBad     Status = "bad"
	StatusInitial Status = "initial"
)

// NoResponse is the latency sentinel for a probe that timed out.
const NoResponse int64 = -1

// Valid reports whether s is one of the statuses the backend documents.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusBad, StatusInitial:
		return true
	default:
		return false
	}
}

// Checker is a monitored site. Period is expressed in the unit agreed with
// the backend (see config checker.period_unit).
type Checker struct {
	ID     int     `json:"id" yaml:"id"`
	URL    string  `json:"url" yaml:"url"`
	Period float64 `json:"check_interval" yaml:"check_interval"`
	Status Status  `json:"status,omitempty" yaml:"status,omitempty"`
}

// InitialStatus returns the backend-supplied status, or nil when the
// checker payload carried none.
func (c Checker) InitialStatus() *Status {
	if c.Status == "" {
		return nil
	}
	s := c.Status
	return &s
}

// LogEntry is one probe result for a checker.
type LogEntry struct {
	CheckerID    int    `json:"id" yaml:"id"`
	RequestTime  string `json:"req_time" yaml:"req_time"`
	ResponseTime int64  `json:"resp_time" yaml:"resp_time"`
	Status       Status `json:"status" yaml:"status"`
	Site         string `json:"site" yaml:"site"`
}

// RequestedAt parses RequestTime. The zero time and false are returned
// when the backend sent something that is not RFC 3339.
func (e LogEntry) RequestedAt() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, e.RequestTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TimedOut reports whether the probe got no response.
func (e LogEntry) TimedOut() bool {
	return e.ResponseTime == NoResponse
}
