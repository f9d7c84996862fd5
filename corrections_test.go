package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var correctionKeys = []string{"1MB", "10MB", "100MB"}

func correctionSnapshot() Snapshot {
	return Snapshot{
		"1MB":   {"Query_3": Elapsed(1), "Query_4": Elapsed(1)},
		"10MB":  {"Query_3": Elapsed(40), "Query_4": Elapsed(2)},
		"100MB": {"Query_3": Elapsed(5), "Query_4": {Err: "interrupted"}},
	}
}

func TestNeighborAverage(t *testing.T) {
	snapshot := correctionSnapshot()
	ApplyCorrections(VariantNormalized, snapshot, correctionKeys, []Correction{
		{Variant: VariantNormalized, Query: "Query_3", Dataset: "10MB", Policy: PolicyNeighborAverage},
	})
	require.Equal(t, Elapsed(3), snapshot["10MB"]["Query_3"])
	require.Equal(t, Elapsed(2), snapshot["10MB"]["Query_4"])
}

func TestCorrectionsSkipped(t *testing.T) {
	for name, correction := range map[string]Correction{
		"other variant":   {Variant: VariantFlat, Query: "Query_3", Dataset: "10MB", Policy: PolicyNeighborAverage},
		"first dataset":   {Variant: VariantNormalized, Query: "Query_3", Dataset: "1MB", Policy: PolicyNeighborAverage},
		"last dataset":    {Variant: VariantNormalized, Query: "Query_3", Dataset: "100MB", Policy: PolicyNeighborAverage},
		"unknown dataset": {Variant: VariantNormalized, Query: "Query_3", Dataset: "1GB", Policy: PolicyNeighborAverage},
		"failed neighbor": {Variant: VariantNormalized, Query: "Query_4", Dataset: "10MB", Policy: PolicyNeighborAverage},
		"missing query":   {Variant: VariantNormalized, Query: "Query_9", Dataset: "10MB", Policy: PolicyNeighborAverage},
		"unknown policy":  {Variant: VariantNormalized, Query: "Query_3", Dataset: "10MB", Policy: "median"},
	} {
		snapshot := correctionSnapshot()
		ApplyCorrections(VariantNormalized, snapshot, correctionKeys, []Correction{correction})
		require.Equal(t, correctionSnapshot(), snapshot, name)
	}
}
