package internaldefs

import (
	"strings"
	"testing"

	goCognito "github.com/MrEthical07/goCognito"
)

func TestCounterDefsAreUnique(t *testing.T) {
	ids := map[goCognito.MetricID]bool{}
	names := map[string]bool{}
	for _, def := range CounterDefs {
		if ids[def.ID] || names[def.Name] {
			t.Fatalf("duplicate counter definition %+v", def)
		}
		if !strings.HasPrefix(def.Name, "gocognito_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("unexpected counter name %q", def.Name)
		}
		if def.ID == goCognito.MetricGetIdentityLatency {
			t.Fatal("latency histogram must not be a counter")
		}
		ids[def.ID] = true
		names[def.Name] = true
	}
	if len(CounterDefs) != int(goCognito.MetricGetIdentityLatency) {
		t.Fatalf("expected every counter defined, got %d", len(CounterDefs))
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if len(HistogramBounds) != len(HistogramBoundSuffix) {
		t.Fatal("bound names out of sync")
	}
}

func TestLabeledCounterDefsReadKnownCounters(t *testing.T) {
	known := map[goCognito.MetricID]string{}
	names := map[string]bool{}
	for _, def := range CounterDefs {
		known[def.ID] = def.Name
		names[def.Name] = true
	}
	for _, def := range LabeledCounterDefs {
		if !strings.HasPrefix(def.Name, "gocognito_") || def.Label == "" || len(def.Series) == 0 {
			t.Fatalf("unexpected labelled family %+v", def)
		}
		if names[def.Name] {
			t.Fatalf("family %q reuses a counter name", def.Name)
		}
		values := map[string]bool{}
		for _, series := range def.Series {
			if _, ok := known[series.ID]; !ok {
				t.Fatalf("%s: series %q reads an undefined counter", def.Name, series.Value)
			}
			if values[series.Value] {
				t.Fatalf("%s: duplicate label value %q", def.Name, series.Value)
			}
			values[series.Value] = true
		}
	}
}
