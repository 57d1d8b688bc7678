package domain

import (
	"lorasoil2mqtt/internal/snapshot"

	"github.com/asynkron/protoactor-go/actor"
)

type ActorRef actor.PID

type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}

const (
	ACTOR_ID_MASTER   = "master"
	ACTOR_ID_MQTT     = "mqtt"
	ACTOR_ID_ROUTER   = "router"
	ACTOR_ID_SNAPSHOT = "snapshot"
)

// GatewayMessage is one raw payload received on the subscribed gateway topic.
type GatewayMessage struct {
	Topic   string
	Payload string
}

// SubscribeGatewayRequest asks the MQTT actor to subscribe to the gateway
// topic and deliver every message there as a GatewayMessage to the requester.
// The router sends it only after snapshot replay completed, so replay and
// live traffic never interleave.
type SubscribeGatewayRequest struct {
	ActorRequestMixIn
	Topic string
}

type SubscribeGatewayResponse struct {
	ActorResponseMixIn
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type LoadSnapshotRequest struct {
	ActorRequestMixIn
}

type LoadSnapshotResponse struct {
	ActorResponseMixIn
	Snapshot snapshot.Snapshot
}

type SaveSnapshotRequest struct {
	ActorRequestMixIn
	Snapshot snapshot.Snapshot
}

type SaveSnapshotResponse struct {
	ActorResponseMixIn
}

type ChannelInfo struct {
	Key               string   `json:"key"`
	Name              string   `json:"name"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	Value             *float64 `json:"value,omitempty"`
}

type DeviceInfo struct {
	FullId   string        `json:"full_id"`
	TypeName string        `json:"type"`
	Id       string        `json:"id"`
	Channels []ChannelInfo `json:"channels"`
}

type ListDevicesRequest struct {
	ActorRequestMixIn
}

type ListDevicesResponse struct {
	ActorResponseMixIn
	Devices []DeviceInfo
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
