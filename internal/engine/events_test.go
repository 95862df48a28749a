package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

func TestExpectedEvents(t *testing.T) {
	t.Parallel()

	ps := params.Default()
	counts := map[model.Treatment]float64{
		model.TreatmentNew:  1_000,
		model.TreatmentNone: 500,
	}

	events := ExpectedEvents(counts, ps.Events, nil)

	// 1000 patients * 0.018 base rate * (1 - 0.56 RRR)
	assert.InDelta(t, 1000*0.018*0.44, events[model.EventStroke][model.TreatmentNew], 1e-9)
	// Untreated arm gets no risk reduction.
	assert.InDelta(t, 500*0.018, events[model.EventStroke][model.TreatmentNone], 1e-9)
	// Absent arms contribute nothing.
	assert.Equal(t, 0.0, events[model.EventStroke][model.TreatmentSpiro])
}

func TestExpectedEventsRiskMultiplier(t *testing.T) {
	t.Parallel()

	ps := params.Default()
	counts := map[model.Treatment]float64{model.TreatmentNone: 100}
	mult := map[model.EventType]float64{model.EventStroke: 2.0}

	base := ExpectedEvents(counts, ps.Events, nil)
	scaled := ExpectedEvents(counts, ps.Events, mult)

	assert.InDelta(t, 2*base[model.EventStroke][model.TreatmentNone],
		scaled[model.EventStroke][model.TreatmentNone], 1e-9)
	// Events without a multiplier are untouched.
	assert.InDelta(t, base[model.EventMI][model.TreatmentNone],
		scaled[model.EventMI][model.TreatmentNone], 1e-9)
}

func TestEventsAvoidedZeroWhenWorldsMatch(t *testing.T) {
	t.Parallel()

	ps := params.Default()
	counts := map[model.Treatment]float64{
		model.TreatmentSpiro: 800,
		model.TreatmentNone:  200,
	}
	world := ExpectedEvents(counts, ps.Events, nil)

	avoided := EventsAvoided(world, world)
	for _, e := range model.EventTypes {
		assert.Equal(t, 0.0, avoided[e])
	}
}

func TestEventsAvoidedNoEfficacy(t *testing.T) {
	t.Parallel()

	// With every RRR at zero, shifting patients between arms cannot change
	// the event count.
	ps := params.Default()
	for e := range ps.Events.RRR {
		for tr := range ps.Events.RRR[e] {
			ps.Events.RRR[e][tr] = 0
		}
	}

	current := ExpectedEvents(map[model.Treatment]float64{
		model.TreatmentSpiro: 1_000,
	}, ps.Events, nil)
	next := ExpectedEvents(map[model.Treatment]float64{
		model.TreatmentNew:   600,
		model.TreatmentSpiro: 400,
	}, ps.Events, nil)

	avoided := EventsAvoided(current, next)
	for _, e := range model.EventTypes {
		assert.InDelta(t, 0.0, avoided[e], 1e-9)
	}
}

func TestEventOffsetSeries(t *testing.T) {
	t.Parallel()

	costs := params.EventCosts{
		Acute: map[model.EventType]float64{
			model.EventStroke: 35_000,
		},
		FollowupAnnual: map[model.EventType]float64{
			model.EventStroke: 8_000,
		},
	}

	avoided := []map[model.EventType]float64{
		{model.EventStroke: 2},
		{model.EventStroke: 3},
		{model.EventStroke: 0},
	}

	offsets := EventOffsetSeries(avoided, costs)
	require.Len(t, offsets, 3)

	// Year 1: acute only.
	assert.InDelta(t, 2*35_000.0, offsets[0], 1e-9)
	// Year 2: new acute plus the year-1 follow-up tail.
	assert.InDelta(t, 3*35_000.0+2*8_000.0, offsets[1], 1e-9)
	// Year 3: tails from both prior years, no new events.
	assert.InDelta(t, (2+3)*8_000.0, offsets[2], 1e-9)
}
