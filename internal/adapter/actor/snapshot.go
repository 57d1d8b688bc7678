package actor

import (
	"context"
	"fmt"
	"time"

	"lorasoil2mqtt/internal/core/domain"
	"lorasoil2mqtt/internal/core/port"
	"lorasoil2mqtt/internal/snapshot"
	"lorasoil2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// SnapshotStoreActor serializes all access to the snapshot store. Load and
// Save run as background tasks so a slow disk never blocks message decode.
type SnapshotStoreActor struct {
	store  port.SnapshotStore
	logger *zap.Logger
}

func NewSnapshotStoreActor(store port.SnapshotStore, logger *zap.Logger) *SnapshotStoreActor {
	return &SnapshotStoreActor{
		store:  store,
		logger: actorutil.ActorLogger(domain.ACTOR_ID_SNAPSHOT, logger),
	}
}

func (state *SnapshotStoreActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("snapshot started")
	case *actor.Stopping:
		if err := state.store.Close(); err != nil {
			state.logger.Warn("snapshot store close", zap.Error(err))
		}
	case domain.ActorHealthRequest:
		state.logger.Debug("snapshot ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SNAPSHOT,
			Healthy: true,
			State:   "idle",
		})
	case domain.LoadSnapshotRequest:
		state.logger.Debug("snapshot LoadSnapshotRequest")
		state.load(ctx, msg)
	case domain.SaveSnapshotRequest:
		state.logger.Debug("snapshot SaveSnapshotRequest")
		state.save(ctx, msg)
	default:
		state.logger.Debug("snapshot ignore", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *SnapshotStoreActor) load(ctx actor.Context, msg domain.LoadSnapshotRequest) {
	actorutil.NewBackgroundTask(ctx, func() (*domain.LoadSnapshotResponse, error) {
		snap, err := state.store.Load(context.Background())
		if err != nil {
			return nil, err
		}
		return &domain.LoadSnapshotResponse{
			Snapshot: snap,
		}, nil
	}).WithTimeout(5 * time.Second).Recover(func(err error) domain.LoadSnapshotResponse {
		// a failed load means a cold start, not a dead bridge
		state.logger.Warn("snapshot load failed, starting empty", zap.Error(err))
		return domain.LoadSnapshotResponse{
			Snapshot: snapshot.Empty(),
		}
	}).PipeTo(actorutil.ForRequest(msg).ReplyTo(ctx))
}

func (state *SnapshotStoreActor) save(ctx actor.Context, msg domain.SaveSnapshotRequest) {
	actorutil.NewBackgroundTask(ctx, func() (*domain.SaveSnapshotResponse, error) {
		err := state.store.Save(context.Background(), msg.Snapshot)
		return &domain.SaveSnapshotResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}, nil
	}).WithTimeout(5 * time.Second).Recover(func(err error) domain.SaveSnapshotResponse {
		return domain.SaveSnapshotResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	}).PipeTo(actorutil.ForRequest(msg).ReplyTo(ctx))
}
