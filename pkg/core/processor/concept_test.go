package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sec_insights/pkg/core/errs"
	"sec_insights/pkg/core/ingest"
)

func TestConceptTable(t *testing.T) {
	series := &ingest.ConceptSeries{
		Tag: "EarningsPerShareDiluted",
		Units: map[string][]ingest.Fact{
			"USD/shares": {{Start: "2023-01-01", End: "2023-12-31", Val: 6.13, FY: 2023, FP: "FY", Form: "10-K", Filed: "2024-02-01"}},
			"USD":        {{End: "2023-12-31", Val: 5}},
		},
	}

	rows, err := ConceptTable(series)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "USD", rows[0].Unit)
	assert.True(t, rows[0].Start.IsZero())
	assert.Equal(t, "USD/shares", rows[1].Unit)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), rows[1].Start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), rows[1].Filed)

	assert.Len(t, FilterUnit(rows, "USD/shares"), 1)
}

func TestConceptTableErrors(t *testing.T) {
	_, err := ConceptTable(&ingest.ConceptSeries{})
	assert.ErrorIs(t, err, errs.ErrProcessing)

	_, err = ConceptTable(&ingest.ConceptSeries{Units: map[string][]ingest.Fact{"USD": {}}})
	assert.ErrorIs(t, err, errs.ErrProcessing)
}

func TestFrameTable(t *testing.T) {
	frame := &ingest.Frame{Data: []ingest.FrameRecord{{CIK: "0000000001", Val: 10}}}
	recs, err := FrameTable(frame)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	empty, err := FrameTable(&ingest.Frame{Data: []ingest.FrameRecord{}})
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = FrameTable(&ingest.Frame{})
	assert.ErrorIs(t, err, errs.ErrProcessing)
}

func TestPeriodMetrics(t *testing.T) {
	var rows []ConceptRow
	vals := []float64{100, 110, 0, 120, 130, 150}
	// deliberately out of order
	for i := len(vals) - 1; i >= 0; i-- {
		rows = append(rows, ConceptRow{
			End: time.Date(2023, time.Month(1+i*3), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1),
			Val: vals[i],
		})
	}

	out := PeriodMetrics(rows, 4)
	require.Len(t, out, 6)
	for i, pc := range out {
		assert.Equal(t, vals[i], pc.Value)
	}

	assert.Nil(t, out[0].Change)
	require.NotNil(t, out[1].Change)
	assert.Equal(t, 10.0, *out[1].Change)
	assert.InDelta(t, 10.0, *out[1].PctChange, 1e-9)

	require.NotNil(t, out[3].Change)
	assert.Equal(t, 120.0, *out[3].Change)
	assert.Nil(t, out[3].PctChange, "growth from zero is undefined")

	assert.Nil(t, out[3].ChangeFromLag)
	require.NotNil(t, out[4].ChangeFromLag)
	assert.Equal(t, 30.0, *out[4].ChangeFromLag)
	assert.InDelta(t, 30.0, *out[4].PctChangeFromLag, 1e-9)
	assert.InDelta(t, 36.3636, *out[5].PctChangeFromLag, 1e-3)
}

func TestGrowthPct(t *testing.T) {
	tests := []struct {
		current, prior float64
		want           float64
		ok             bool
	}{
		{110, 100, 10, true},
		{90, 100, -10, true},
		{5, 0, 0, false},
		{-50, -100, -50, true},
	}
	for _, tt := range tests {
		got, ok := GrowthPct(tt.current, tt.prior)
		assert.Equal(t, tt.ok, ok)
		if ok {
			assert.InDelta(t, tt.want, got, 1e-9)
		}
	}
}
