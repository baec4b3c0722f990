package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	exchange string
	events   []*Event
	headers  []Headers
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, exchange string, event *Event, headers Headers) error {
	p.exchange = exchange
	p.events = append(p.events, event)
	p.headers = append(p.headers, headers)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestNewEventRoundTrip(t *testing.T) {
	event, err := NewEvent(ItemDeletedEvent, EventVersionV1, ItemDeletedPayload{ID: 7, Seller: "alice"}, Headers{TraceID: "t"})
	require.NoError(t, err)

	assert.Equal(t, "item.deleted.v1", event.GetRoutingKey())
	assert.Equal(t, "t", event.TraceID)

	var payload ItemDeletedPayload
	require.NoError(t, event.DecodePayload(&payload))
	assert.Equal(t, int64(7), payload.ID)
	assert.Equal(t, "alice", payload.Seller)
}

func TestDecodePayloadEmpty(t *testing.T) {
	err := (&Event{Event: "x"}).DecodePayload(&ItemDeletedPayload{})
	assert.Error(t, err)
}

func TestEmit(t *testing.T) {
	p := &recordingPublisher{}

	Emit(context.Background(), p, "market", CommentCreatedEvent, CommentCreatedPayload{ID: 1})

	require.Len(t, p.events, 1)
	assert.Equal(t, ItemExchange, p.exchange)
	assert.Equal(t, CommentCreatedEvent, p.events[0].Event)
	assert.Equal(t, "market", p.headers[0].Service)
	assert.NotEmpty(t, p.headers[0].TraceID)
}

func TestEmitSwallowsErrorsAndNilPublisher(t *testing.T) {
	Emit(context.Background(), nil, "market", ItemCreatedEvent, ItemCreatedPayload{})

	p := &recordingPublisher{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), p, "market", ItemCreatedEvent, ItemCreatedPayload{})
	})
	assert.Len(t, p.events, 1)
}
