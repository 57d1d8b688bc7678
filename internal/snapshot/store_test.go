package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testTopic = "home/OMG_ESP32_LORA/LORAtoMQTT"

func TestSQLiteStoreLoadEmpty(t *testing.T) {

	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"), testTopic, zap.Must(zap.NewDevelopment()))
	assert.NoError(t, err)
	defer store.Close()

	snap, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestSQLiteStoreSaveLoadRoundTrip(t *testing.T) {

	path := filepath.Join(t.TempDir(), "snapshots.db")
	logger := zap.Must(zap.NewDevelopment())

	store, err := OpenSQLiteStore(path, testTopic, logger)
	assert.NoError(t, err)

	snap := Snapshot{
		LastMessage: "last",
		RecentMessages: map[string]string{
			"MakerFabsSoilSensorV3_7": "raw",
		},
	}
	assert.NoError(t, store.Save(context.Background(), snap))

	// overwrite with a newer snapshot
	snap.RecentMessages["MakerFabsSoilSensorV3JSON_42"] = "raw b"
	assert.NoError(t, store.Save(context.Background(), snap))
	assert.NoError(t, store.Close())

	// reopen and read back
	store, err = OpenSQLiteStore(path, testTopic, logger)
	assert.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func TestSQLiteStoreTopicsAreIsolated(t *testing.T) {

	path := filepath.Join(t.TempDir(), "snapshots.db")
	logger := zap.Must(zap.NewDevelopment())

	store, err := OpenSQLiteStore(path, testTopic, logger)
	assert.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Save(context.Background(), Snapshot{
		LastMessage:    "last",
		RecentMessages: map[string]string{"MakerFabsSoilSensorV3_7": "raw"},
	}))

	other, err := OpenSQLiteStore(path, "home/other/LORAtoMQTT", logger)
	assert.NoError(t, err)
	defer other.Close()

	snap, err := other.Load(context.Background())
	assert.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestSQLiteStoreCorruptPayloadColdStarts(t *testing.T) {

	path := filepath.Join(t.TempDir(), "snapshots.db")
	logger := zap.Must(zap.NewDevelopment())

	store, err := OpenSQLiteStore(path, testTopic, logger)
	assert.NoError(t, err)
	defer store.Close()

	_, err = store.db.Exec(`INSERT INTO snapshots (topic, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		testTopic, []byte("not json"))
	assert.NoError(t, err)

	snap, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}
