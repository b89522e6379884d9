package trader

import (
	"time"

	"github.com/marwyn/tradewind/internal/core"
)

// Session is a daily window during which new positions may be opened.
// Existing positions are managed around the clock. A start after the
// end describes an overnight window (e.g. 22:00 to 06:00).
type Session struct {
	enabled bool
	start   int // minutes from midnight
	end     int
}

// NewSession parses a window from "HH:MM" bounds. A disabled session
// always allows trading.
func NewSession(enabled bool, start, end string) (Session, error) {
	if !enabled {
		return Session{}, nil
	}
	s, err := parseClock(start)
	if err != nil {
		return Session{}, core.WrapErrorf(core.ErrConfigInvalid, "session start %q", start)
	}
	e, err := parseClock(end)
	if err != nil {
		return Session{}, core.WrapErrorf(core.ErrConfigInvalid, "session end %q", end)
	}
	return Session{enabled: true, start: s, end: e}, nil
}

// Contains reports whether the instant falls inside the window.
func (s Session) Contains(t time.Time) bool {
	if !s.enabled {
		return true
	}
	now := t.Hour()*60 + t.Minute()
	if s.start <= s.end {
		return s.start <= now && now <= s.end
	}
	return now >= s.start || now <= s.end
}

func parseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
