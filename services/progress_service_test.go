package services

import (
	"encoding/json"
	"research-incentive-api/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTrackerTransition(t *testing.T) {
	legal := [][2]string{
		{models.TrackerWriting, models.TrackerCommunicated},
		{models.TrackerCommunicated, models.TrackerSubmitted},
		{models.TrackerCommunicated, models.TrackerWriting},
		{models.TrackerSubmitted, models.TrackerAccepted},
		{models.TrackerSubmitted, models.TrackerRejected},
		{models.TrackerAccepted, models.TrackerPublished},
		{models.TrackerRejected, models.TrackerWriting},
		{models.TrackerRejected, models.TrackerSubmitted},
	}
	for _, edge := range legal {
		assert.True(t, CanTrackerTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}

	illegal := [][2]string{
		{models.TrackerRejected, models.TrackerPublished}, // must go through acceptance again
		{models.TrackerWriting, models.TrackerPublished},
		{models.TrackerWriting, models.TrackerAccepted},
		{models.TrackerPublished, models.TrackerWriting},
		{models.TrackerAccepted, models.TrackerRejected},
	}
	for _, edge := range illegal {
		assert.False(t, CanTrackerTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestMergeStatusData_ShallowMerge(t *testing.T) {
	stored := `{"journal":"Nature","round":1}`
	merged, err := MergeStatusData(stored, map[string]interface{}{
		"round":    2,
		"decision": "minor revision",
	})
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(merged), &result))
	assert.Equal(t, "Nature", result["journal"])
	assert.Equal(t, float64(2), result["round"])
	assert.Equal(t, "minor revision", result["decision"])
}

func TestMergeStatusData_EmptyStored(t *testing.T) {
	merged, err := MergeStatusData("", map[string]interface{}{"venue": "ICML"})
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(merged), &result))
	assert.Equal(t, "ICML", result["venue"])
}

func TestMergeStatusData_CorruptStored(t *testing.T) {
	_, err := MergeStatusData("{not json", map[string]interface{}{"k": "v"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
