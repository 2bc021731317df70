package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

// gathered returns metric values keyed by family name and label value.
func gathered(t *testing.T, o *Observer) map[string]map[string]float64 {
	t.Helper()
	families, err := o.Registry().Gather()
	require.NoError(t, err)

	out := make(map[string]map[string]float64)
	for _, mf := range families {
		values := make(map[string]float64)
		for _, m := range mf.GetMetric() {
			label := m.GetLabel()[0].GetValue()
			if c := m.GetCounter(); c != nil {
				values[label] = c.GetValue()
			} else {
				values[label] = m.GetGauge().GetValue()
			}
		}
		out[mf.GetName()] = values
	}
	return out
}

func TestObserver_StageCompleted(t *testing.T) {
	o := NewObserver()
	o.StageCompleted(domain.StageReport{Stage: domain.StageRemoteIDs, Added: 4, Failed: 1, Duration: 1500 * time.Millisecond})
	o.StageCompleted(domain.StageReport{Stage: domain.StageRemoteIDs, Added: 2})

	m := gathered(t, o)
	assert.InDelta(t, 6.0, m["ncfp_stage_rows_added_total"]["identifier-resolution"], 1e-9)
	assert.InDelta(t, 1.0, m["ncfp_stage_failures_total"]["identifier-resolution"], 1e-9)
	assert.InDelta(t, 0.0, m["ncfp_stage_duration_seconds"]["identifier-resolution"], 1e-9, "gauge holds the last run")
}

func TestObserver_ExtractionOutcome(t *testing.T) {
	o := NewObserver()
	o.ExtractionOutcome(domain.ReasonMatched)
	o.ExtractionOutcome(domain.ReasonMatched)
	o.ExtractionOutcome(domain.ReasonAmbiguous)

	outcomes := gathered(t, o)["ncfp_extraction_outcomes_total"]
	assert.Len(t, outcomes, len(domain.AllMatchReasons()))
	assert.InDelta(t, 2.0, outcomes["matched"], 1e-9)
	assert.InDelta(t, 1.0, outcomes["ambiguous-candidate-records"], 1e-9)
	assert.Zero(t, outcomes["translation-mismatch"])
}

func TestObserver_WriteFile(t *testing.T) {
	o := NewObserver()
	o.StageCompleted(domain.StageReport{Stage: domain.StageHeaders, Added: 3})

	path := filepath.Join(t.TempDir(), "ncfp.prom")
	require.NoError(t, o.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ncfp_stage_rows_added_total{stage="header-fetch"} 3`)
	assert.Contains(t, string(data), "# TYPE ncfp_extraction_outcomes_total counter")

	assert.Error(t, o.WriteFile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
