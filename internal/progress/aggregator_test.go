package progress_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/progress"
)

func measure(current, target float64) goal.Measure {
	return goal.Measure{CurrentValue: current, TargetValue: target, Unit: "km"}
}

func TestKeyResultProgressStaysInRange(t *testing.T) {
	cases := []struct {
		current, target, want float64
	}{
		{0, 100, 0},
		{25, 100, 25},
		{100, 100, 100},
		{5000, 100, 100},
		{math.MaxFloat64, 1, 100},
		{10, 0, 0},
		{0, 0, 0},
		{10, -5, 0},
	}
	for _, c := range cases {
		got := progress.KeyResultProgress(measure(c.current, c.target))
		assert.Equal(t, c.want, got, "current=%v target=%v", c.current, c.target)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestAmbitionProgress(t *testing.T) {
	assert.Equal(t, 0.0, progress.AmbitionProgress(nil))

	one := []goal.KeyResult{{Measure: measure(42, 42)}}
	assert.Equal(t, 100.0, progress.AmbitionProgress(one))

	// Unweighted: an overachieving key result cannot carry the others.
	mixed := []goal.KeyResult{
		{Measure: measure(300, 100)},
		{Measure: measure(0, 100)},
		{Measure: measure(10, 0)},
		{Measure: measure(50, 100)},
	}
	assert.Equal(t, 37.5, progress.AmbitionProgress(mixed))
}

func TestWeightedObjectiveProgress(t *testing.T) {
	assert.Equal(t, 0.0, progress.WeightedObjectiveProgress(nil))
	assert.Equal(t, 0.0, progress.WeightedObjectiveProgress([]progress.Member{
		{Progress: 80, Weight: 0},
		{Progress: 40, Weight: 0},
	}))

	got := progress.WeightedObjectiveProgress([]progress.Member{
		{Progress: 100, Weight: 75},
		{Progress: 0, Weight: 25},
	})
	assert.Equal(t, 75.0, got)

	// Weights need not add up to 100.
	got = progress.WeightedObjectiveProgress([]progress.Member{
		{Progress: 50, Weight: 10},
		{Progress: 150, Weight: 10},
	})
	assert.Equal(t, 75.0, got)
}

func TestMembersUsesKeyResultProgress(t *testing.T) {
	krs := []goal.QuarterlyKeyResult{
		{Measure: measure(5, 10), Weight: 40},
		{Measure: measure(10, 10), Weight: 60},
	}
	assert.InDelta(t, 80.0, progress.WeightedObjectiveProgress(progress.Members(krs)), 1e-9)
}

func TestOverallProgressCountsEachAmbitionOnce(t *testing.T) {
	assert.Equal(t, 0.0, progress.OverallProgress(nil))

	big := progress.AmbitionProgress([]goal.KeyResult{
		{Measure: measure(0, 1)}, {Measure: measure(0, 1)}, {Measure: measure(0, 1)},
	})
	small := progress.AmbitionProgress([]goal.KeyResult{{Measure: measure(1, 1)}})
	assert.Equal(t, 50.0, progress.OverallProgress([]float64{big, small}))
}

func TestPercentRoundsAndClamps(t *testing.T) {
	assert.Equal(t, 33, progress.Percent(100.0/3))
	assert.Equal(t, 67, progress.Percent(200.0/3))
	assert.Equal(t, 100, progress.Percent(140))
	assert.Equal(t, 0, progress.Percent(math.NaN()))
}
