package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotEncodeDecodeRoundTrip(t *testing.T) {

	snap := Snapshot{
		LastMessage: "last",
		RecentMessages: map[string]string{
			"MakerFabsSoilSensorV3_7":      "raw a",
			"MakerFabsSoilSensorV3JSON_42": "raw b",
		},
	}

	data, err := Encode(snap)
	assert.NoError(t, err)

	decoded, err := Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, snap, decoded)
}

func TestSnapshotDecodeCorrupt(t *testing.T) {

	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	// a valid but empty object still yields a usable snapshot
	decoded, err := Decode([]byte(`{}`))
	assert.NoError(t, err)
	assert.NotNil(t, decoded.RecentMessages)
	assert.True(t, decoded.IsEmpty())
}

func TestSnapshotClone(t *testing.T) {

	snap := Snapshot{
		LastMessage: "last",
		RecentMessages: map[string]string{
			"MakerFabsSoilSensorV3_7": "raw",
		},
	}

	clone := snap.Clone()
	clone.RecentMessages["MakerFabsSoilSensorV3_8"] = "other"

	assert.Len(t, snap.RecentMessages, 1)
	assert.Len(t, clone.RecentMessages, 2)
}

func TestSnapshotEmpty(t *testing.T) {

	snap := Empty()
	assert.True(t, snap.IsEmpty())
	assert.NotNil(t, snap.RecentMessages)
}
