package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetpipe/meeting-gateway/internal/model"
)

func TestPublishInsertsSerializedRow(t *testing.T) {
	repo := &fakeOutboxRepo{}
	p := NewPublisher(repo)

	m := model.Meeting{ID: "m1", Title: "standup", ChannelID: "c1", Platform: model.PlatformDiscord}
	err := p.PublishCreated(context.Background(), nil, m, m.ID, model.AggregateMeeting)
	require.NoError(t, err)

	require.Len(t, repo.events, 1)
	ev := repo.events[0]
	assert.Equal(t, model.AggregateMeeting, ev.AggregateType)
	assert.Equal(t, "m1", ev.AggregateID)
	assert.Equal(t, model.EventCreated, ev.EventType)

	var got model.Meeting
	require.NoError(t, json.Unmarshal(ev.Payload, &got))
	assert.Equal(t, "c1", got.ChannelID)
}

func TestPublishSerializationFailureInsertsNothing(t *testing.T) {
	repo := &fakeOutboxRepo{}
	p := NewPublisher(repo)

	// channels are not JSON-serializable
	err := p.Publish(context.Background(), nil, make(chan int), "x", model.AggregateMeeting, model.EventCreated)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerialization)
	assert.Empty(t, repo.events)
}

func TestPublishEventTypeHelpers(t *testing.T) {
	repo := &fakeOutboxRepo{}
	p := NewPublisher(repo)
	ctx := context.Background()

	require.NoError(t, p.PublishStarted(ctx, nil, struct{}{}, "m1", model.AggregateMeeting))
	require.NoError(t, p.PublishEnded(ctx, nil, struct{}{}, "m1", model.AggregateMeeting))
	require.NoError(t, p.PublishUpdated(ctx, nil, struct{}{}, "m1", model.AggregateMeeting))

	require.Len(t, repo.events, 3)
	assert.Equal(t, model.EventStarted, repo.events[0].EventType)
	assert.Equal(t, model.EventEnded, repo.events[1].EventType)
	assert.Equal(t, model.EventUpdated, repo.events[2].EventType)
}
