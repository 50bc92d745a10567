// Package trend classifies the recent trajectory of a progress value from
// the snapshot ledger.
package trend

import (
	"fmt"
	"math"
	"time"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

const (
	WindowDays = 14
	recentDays = 3
	// previous window covers offsets -7..-4 from the end
	previousFrom = 7
	previousTo   = 4

	minRecordedDays  = 2
	stableDifference = 2.0
)

type Direction string

const (
	Up           Direction = "up"
	Down         Direction = "down"
	Stable       Direction = "stable"
	Insufficient Direction = "insufficient_data"
)

// Point is one day of the series. Recorded is false for a zero-filled day.
type Point struct {
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	Recorded bool    `json:"recorded"`
}

type Result struct {
	Trend       Direction `json:"trend"`
	Percentage  float64   `json:"percentage"`
	Difference  float64   `json:"difference"`
	RecentAvg   float64   `json:"recent_avg"`
	PreviousAvg float64   `json:"previous_avg"`
	Message     string    `json:"message"`
}

// Bucket averages snapshots per calendar day over the WindowDays days that end
// on the day of end. Days without snapshots are zero.
func Bucket(snaps []goal.ProgressSnapshot, end time.Time) []Point {
	last := util.StartOfDay(end)
	first := last.AddDate(0, 0, -(WindowDays - 1))

	type acc struct {
		sum float64
		n   int
	}
	days := make(map[string]*acc, WindowDays)
	for _, s := range snaps {
		if s.RecordedAt.Before(first) {
			continue
		}
		k := util.DayKey(s.RecordedAt)
		a, ok := days[k]
		if !ok {
			a = &acc{}
			days[k] = a
		}
		a.sum += s.Value
		a.n++
	}

	points := make([]Point, 0, WindowDays)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		k := util.DayKey(d)
		p := Point{Date: k}
		if a, ok := days[k]; ok {
			p.Value = a.sum / float64(a.n)
			p.Recorded = true
		}
		points = append(points, p)
	}
	return points
}

func window(points []Point, from, to int) (avg float64, recorded int) {
	n := len(points)
	sum := 0.0
	for _, p := range points[n-from : n-to+1] {
		sum += p.Value
		if p.Recorded {
			recorded++
		}
	}
	return sum / float64(from-to+1), recorded
}

// Analyze compares the mean of the last 3 points with the mean of the 4
// before the last 3 days. Zero-filled days count in both means.
func Analyze(points []Point) Result {
	if len(points) < previousFrom {
		return insufficient()
	}
	recentAvg, recentN := window(points, recentDays, 1)
	previousAvg, previousN := window(points, previousFrom, previousTo)
	if recentN < minRecordedDays || previousN < minRecordedDays {
		return insufficient()
	}

	r := Result{
		Trend:       Stable,
		Difference:  recentAvg - previousAvg,
		RecentAvg:   recentAvg,
		PreviousAvg: previousAvg,
	}
	if math.Abs(r.Difference) >= stableDifference {
		r.Trend = Up
		if r.Difference < 0 {
			r.Trend = Down
		}
		if previousAvg != 0 {
			r.Percentage = math.Abs(r.Difference) / previousAvg * 100
		}
	}
	r.Message = message(r.Trend, r.Percentage)
	return r
}

func insufficient() Result {
	return Result{Trend: Insufficient, Message: message(Insufficient, 0)}
}

func message(d Direction, pct float64) string {
	rounded := int(math.Round(pct))
	switch d {
	case Up:
		if rounded == 0 {
			return "Progress is picking up over the last 3 days."
		}
		return fmt.Sprintf("Progress is up %d%% over the last 3 days.", rounded)
	case Down:
		if rounded == 0 {
			return "Progress is slowing down over the last 3 days."
		}
		return fmt.Sprintf("Progress is down %d%% over the last 3 days.", rounded)
	case Stable:
		return "Progress is stable."
	default:
		return "Not enough data to detect a trend yet."
	}
}
