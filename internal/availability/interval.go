package availability

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange    = errors.New("invalid time range")
	ErrInvalidDuration = errors.New("invalid slot duration")
)

// MaxSlotDuration bounds generated slot lengths.
const MaxSlotDuration = 4 * time.Hour

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect:
// [a,b) overlaps [c,d) iff a < d && c < b.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

func OverlapsAny(start, end time.Time, busy []Interval) bool {
	candidate := Interval{Start: start, End: end}
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// SlotTime is one generated wall-clock slot within a day.
type SlotTime struct {
	Start string
	End   string
}

// SlotTimes walks [startClock, endClock) in duration-sized steps and returns
// one slot per full step; a trailing partial step is discarded.
func SlotTimes(startClock, endClock string, duration time.Duration) ([]SlotTime, error) {
	if duration <= 0 || duration > MaxSlotDuration {
		return nil, ErrInvalidDuration
	}
	start, err := time.Parse("15:04", startClock)
	if err != nil {
		return nil, ErrInvalidRange
	}
	end, err := time.Parse("15:04", endClock)
	if err != nil {
		return nil, ErrInvalidRange
	}
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	var slots []SlotTime
	for t := start; !t.Add(duration).After(end); t = t.Add(duration) {
		slots = append(slots, SlotTime{
			Start: t.Format("15:04"),
			End:   t.Add(duration).Format("15:04"),
		})
	}
	return slots, nil
}
