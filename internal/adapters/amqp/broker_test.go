package amqp_test

import (
	"context"
	"errors"
	"testing"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/snapkeep/internal/adapters/amqp"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports"
)

func connect(t *testing.T) (*amqp.FakeConnection, *amqp.FakeChannel, context.Context, ports.Channel) {
	t.Helper()
	main := &amqp.FakeChannel{Passive: map[string]int{}}
	conn := &amqp.FakeConnection{Main: main}
	ctx := context.Background()
	ch, err := amqp.NewBrokerWithConnection(conn, nil).Connect(ctx)
	require.NoError(t, err)
	return conn, main, ctx, ch
}

func TestBroker_ConnectFailure(t *testing.T) {
	_, err := amqp.NewBrokerWithConnection(nil, errors.New("dial tcp: connection refused")).Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrBrokerConnection.Error())
}

func TestBroker_ChannelFailureClosesConnection(t *testing.T) {
	conn := &amqp.FakeConnection{ChanErr: errors.New("channel refused")}
	_, err := amqp.NewBrokerWithConnection(conn, nil).Connect(context.Background())
	require.Error(t, err)
	assert.True(t, conn.Closed)
}

func TestChannel_DeclareQueueIsDurable(t *testing.T) {
	_, main, ctx, ch := connect(t)

	require.NoError(t, ch.DeclareQueue(ctx, "File_Writer"))
	assert.Equal(t, []string{"File_Writer"}, main.Declared)
}

func TestChannel_PendingCountUsesProbeChannel(t *testing.T) {
	conn, main, ctx, ch := connect(t)
	main.Passive["File_Writer"] = 4

	n, err := ch.PendingCount(ctx, "File_Writer")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, conn.Probes, 1)
	assert.True(t, conn.Probes[0].Closed)
	assert.False(t, main.Closed)
}

func TestChannel_PendingCountMissingQueue(t *testing.T) {
	_, _, ctx, ch := connect(t)

	_, err := ch.PendingCount(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrQueueInspectFailed.Error())
}

func TestChannel_FetchAndAck(t *testing.T) {
	_, main, ctx, ch := connect(t)
	main.Pending = []amqp091.Delivery{{DeliveryTag: 7, Body: []byte(`{"a":1}`)}}

	d, err := ch.Fetch(ctx, "q")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, uint64(7), d.Tag)
	assert.Equal(t, "q", d.Queue)
	assert.Equal(t, `{"a":1}`, string(d.Body))

	require.NoError(t, ch.Ack(ctx, d))
	assert.Equal(t, []uint64{7}, main.Acked)

	empty, err := ch.Fetch(ctx, "q")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestChannel_FetchError(t *testing.T) {
	_, main, ctx, ch := connect(t)
	main.Err = amqp091.ErrClosed

	_, err := ch.Fetch(ctx, "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrQueueFetchFailed.Error())
}

func TestChannel_PublishIsPersistent(t *testing.T) {
	_, main, ctx, ch := connect(t)

	require.NoError(t, ch.Publish(ctx, "File_Writer", []byte(`{}`)))
	require.Len(t, main.Published, 1)
	assert.Equal(t, "File_Writer", main.Keys[0])
	assert.Equal(t, amqp091.Persistent, main.Published[0].DeliveryMode)
	assert.Equal(t, "application/json", main.Published[0].ContentType)
}

func TestChannel_CloseClosesBoth(t *testing.T) {
	conn, main, _, ch := connect(t)

	require.NoError(t, ch.Close())
	assert.True(t, main.Closed)
	assert.True(t, conn.Closed)
}
