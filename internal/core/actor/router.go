package actor

import (
	"fmt"
	"time"

	"lorasoil2mqtt/internal/config"
	"lorasoil2mqtt/internal/core/device"
	"lorasoil2mqtt/internal/core/domain"
	"lorasoil2mqtt/internal/core/events"
	"lorasoil2mqtt/internal/core/router"
	. "lorasoil2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// RouterActor owns one core router. It replays the persisted snapshot before
// subscribing to the gateway topic, so restored values are published before
// the first live message can arrive.
type RouterActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	config        *config.Config
	mqttActor     *actor.PID
	snapshotActor *actor.PID
	eventStream   *eventstream.EventStream
	core          *router.Router
	bridgeDevice  domain.Device
	ctx           actor.Context

	logger *zap.Logger
}

type snapshotFlushTick struct {
}

func NewRouterActor(config *config.Config, mqttActor *actor.PID, snapshotActor *actor.PID,
	eventStream *eventstream.EventStream, logger *zap.Logger) *RouterActor {
	act := &RouterActor{
		config:        config,
		mqttActor:     mqttActor,
		snapshotActor: snapshotActor,
		eventStream:   eventStream,
		behavior:      actor.NewBehavior(),
		stash:         &Stash{},
		logger:        ActorLogger(domain.ACTOR_ID_ROUTER, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *RouterActor) Receive(context actor.Context) {
	state.ctx = context
	state.behavior.Receive(context)
}

func (state *RouterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("router@starting started")

		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.bridgeDevice = events.BridgeDevice(state.config.Gateway.Topic)
		state.core = router.New(state.config.Gateway.Topic, device.Descriptors(), &actorSink{owner: state}, state.logger)

		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.snapshotActor, domain.LoadSnapshotRequest{}, 10*time.Second), func(err error) any {
			return domain.LoadSnapshotResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		state.behavior.Become(state.WaitingSnapshotReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("router@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *RouterActor) WaitingSnapshotReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.LoadSnapshotResponse:
		state.logger.Debug("router@waitsnapshot LoadSnapshotResponse")
		if msg.HasResponseError() {
			// cold start: replay nothing, devices reappear with live traffic
			state.logger.Warn("router@waitsnapshot snapshot unavailable", zap.Error(msg.GetResponseError()))
		}

		if state.config.MQTT.HADiscoveryEnable {
			ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
				Sensors: events.BridgeSensors(state.bridgeDevice),
			})
		}

		state.core.Restore(msg.Snapshot)
		state.publishBridgeSensors()

		ctx.Request(state.mqttActor, domain.SubscribeGatewayRequest{
			Topic: state.config.Gateway.Topic,
		})
		state.behavior.Become(state.WaitingSubscribeReceive)
	case *actor.Restarting:
	case *actor.Stopping:
	default:
		state.logger.Debug("router@waitsnapshot stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *RouterActor) WaitingSubscribeReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.SubscribeGatewayResponse:
		state.logger.Debug("router@waitsubscribe SubscribeGatewayResponse")
		if msg.HasResponseError() {
			// without the subscription the bridge is useless, let the
			// supervisor restart everything
			panic(msg.GetResponseError())
		}
		state.logger.Info("subscribed to gateway topic", zap.String("topic", state.config.Gateway.Topic))
		state.scheduleFlushTick()
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	case *actor.Stopping:
	default:
		state.logger.Debug("router@waitsubscribe stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *RouterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Stopping:
		state.flushSnapshot(ctx)
	case domain.ActorHealthRequest:
		state.logger.Debug("router@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ROUTER,
			Healthy: true,
			State:   "idle",
		})
	case domain.GatewayMessage:
		state.logger.Debug("router@default GatewayMessage", zap.String("payload", msg.Payload))
		state.core.Receive(msg.Payload)
		state.publishBridgeSensors()
	case snapshotFlushTick:
		state.flushSnapshot(ctx)
		state.scheduleFlushTick()
	case domain.SaveSnapshotResponse:
		if msg.HasResponseError() {
			state.logger.Warn("router@default snapshot save failed", zap.Error(msg.GetResponseError()))
		}
	case domain.ListDevicesRequest:
		state.logger.Debug("router@default ListDevicesRequest")
		ForRequest(msg).Respond(ctx, domain.ListDevicesResponse{
			Devices: state.deviceInfos(),
		})
	default:
		state.logger.Debug("router@default ignore", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *RouterActor) scheduleFlushTick() {
	interval := time.Duration(state.config.Snapshot.FlushIntervalMillis) * time.Millisecond
	state.scheduler.RequestOnce(interval, state.ctx.Self(), snapshotFlushTick{})
}

func (state *RouterActor) flushSnapshot(ctx actor.Context) {
	if !state.core.Dirty() {
		return
	}
	ctx.Request(state.snapshotActor, domain.SaveSnapshotRequest{
		Snapshot: state.core.Snapshot(),
	})
	state.core.MarkClean()
}

func (state *RouterActor) publishBridgeSensors() {
	if state.core.LastMessage() != "" {
		state.eventStream.Publish(domain.TextSensorUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
				Id: events.SENSOR_ID_LAST_MESSAGE,
			},
			Value: state.core.LastMessage(),
		})
	}
	state.eventStream.Publish(domain.FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: events.SENSOR_ID_MESSAGES_RECEIVED,
		},
		Value:    float64(state.core.MessagesReceived()),
		Decimals: 0,
	})
}

func (state *RouterActor) deviceInfos() []domain.DeviceInfo {
	devices := state.core.Devices()
	infos := make([]domain.DeviceInfo, 0, len(devices))
	for _, dev := range devices {
		channels := dev.Channels()
		chInfos := make([]domain.ChannelInfo, 0, len(channels))
		for _, ch := range channels {
			info := domain.ChannelInfo{
				Key:               ch.Key,
				Name:              ch.Name,
				UnitOfMeasurement: ch.UnitOfMeasurement,
			}
			if value, ok := ch.Value(); ok {
				info.Value = &value
			}
			chInfos = append(chInfos, info)
		}
		infos = append(infos, domain.DeviceInfo{
			FullId:   dev.FullId(),
			TypeName: dev.TypeName(),
			Id:       dev.Id(),
			Channels: chInfos,
		})
	}
	return infos
}

// actorSink bridges the core router to the actor world: channel announcements
// become discovery publishes, values become sensor update events.
type actorSink struct {
	owner *RouterActor
}

func (s *actorSink) EnsureChannel(dev device.Device, ch *device.Channel) {
	state := s.owner
	if !state.config.MQTT.HADiscoveryEnable {
		return
	}
	state.ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors: []domain.GenericSensor{
			events.ChannelToGenericSensor(state.bridgeDevice, dev, ch),
		},
	})
}

func (s *actorSink) PublishValue(dev device.Device, ch *device.Channel, value float64) {
	s.owner.eventStream.Publish(events.MeasurementToUpdateEvent(dev, ch, value))
}
