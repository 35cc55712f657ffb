package memqueue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/snapkeep/internal/adapters/memqueue"
	"go.trai.ch/snapkeep/internal/core/domain"
)

func TestChannel_PublishFetchAck(t *testing.T) {
	ctx := context.Background()
	ch, err := memqueue.NewBroker().Connect(ctx)
	require.NoError(t, err)

	require.NoError(t, ch.DeclareQueue(ctx, "q"))
	require.NoError(t, ch.DeclareQueue(ctx, "q"))
	require.NoError(t, ch.Publish(ctx, "q", []byte("one")))
	require.NoError(t, ch.Publish(ctx, "q", []byte("two")))

	n, err := ch.PendingCount(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	d, err := ch.Fetch(ctx, "q")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "one", string(d.Body))
	require.NoError(t, ch.Ack(ctx, d))

	n, err = ch.PendingCount(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = ch.Ack(ctx, d)
	assert.True(t, errors.Is(err, domain.ErrQueueAckFailed))
}

func TestChannel_FetchEmpty(t *testing.T) {
	ctx := context.Background()
	ch, err := memqueue.NewBroker().Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, ch.DeclareQueue(ctx, "q"))

	d, err := ch.Fetch(ctx, "q")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestChannel_UnknownQueue(t *testing.T) {
	ctx := context.Background()
	ch, err := memqueue.NewBroker().Connect(ctx)
	require.NoError(t, err)

	_, err = ch.PendingCount(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrQueueInspectFailed))

	_, err = ch.Fetch(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrQueueFetchFailed))

	require.NoError(t, ch.Publish(ctx, "missing", []byte("dropped")))
}

func TestChannel_CloseRequeuesUnacked(t *testing.T) {
	ctx := context.Background()
	b := memqueue.NewBroker()

	first, err := b.Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, first.DeclareQueue(ctx, "q"))
	for _, body := range []string{"a", "b", "c"} {
		require.NoError(t, first.Publish(ctx, "q", []byte(body)))
	}

	_, err = first.Fetch(ctx, "q")
	require.NoError(t, err)
	_, err = first.Fetch(ctx, "q")
	require.NoError(t, err)
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())

	_, err = first.Fetch(ctx, "q")
	assert.True(t, errors.Is(err, domain.ErrBrokerNotConnected))

	second, err := b.Connect(ctx)
	require.NoError(t, err)
	var got []string
	for {
		d, err := second.Fetch(ctx, "q")
		require.NoError(t, err)
		if d == nil {
			break
		}
		got = append(got, string(d.Body))
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
