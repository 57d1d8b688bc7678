package actor

import (
	"path/filepath"
	"testing"
	"time"

	adactor "lorasoil2mqtt/internal/adapter/actor"
	"lorasoil2mqtt/internal/core/domain"
	"lorasoil2mqtt/internal/snapshot"
	"lorasoil2mqtt/internal/util"
	"lorasoil2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMasterOfPuppets(t *testing.T) {

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	store, err := snapshot.OpenSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"),
		cfg.Gateway.Topic, logger)
	if err != nil {
		t.Error(err)
		return
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.SnapshotStoreActor {
			return adactor.NewSnapshotStoreActor(store, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, logger)
		}, logger)
	})
	masterPID, err := context.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		t.Error(err)
		return
	}

	// give the tree time to replay the snapshot and subscribe
	time.Sleep(2 * time.Second)

	result, err := context.RequestFuture(masterPID, domain.ActorHealthRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health, ok := result.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.Equal(t, domain.ACTOR_ID_MASTER, health.Id)
	assert.True(t, health.Healthy)

	// inject a gateway message straight into the router child
	routerPID := actor.NewPID(as.Address(), "master/router")
	context.Send(routerPID, domain.GatewayMessage{
		Topic:   cfg.Gateway.Topic,
		Payload: `{"message":"ID7 REPLY : SOIL INEDX:1 H:55.2 T:21.0 ADC:640 BAT:800"}`,
	})

	time.Sleep(500 * time.Millisecond)

	result, err = context.RequestFuture(masterPID, domain.ListDevicesRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	devices, ok := result.(domain.ListDevicesResponse)
	assert.True(t, ok)
	assert.Len(t, devices.Devices, 1)
	assert.Equal(t, "MakerFabsSoilSensorV3_7", devices.Devices[0].FullId)
	assert.Len(t, devices.Devices[0].Channels, 5)

	context.Stop(masterPID)

	time.Sleep(1 * time.Second)

	as.Shutdown()
}
