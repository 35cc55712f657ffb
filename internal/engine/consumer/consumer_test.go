package consumer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/snapkeep/internal/adapters/memqueue"
	"go.trai.ch/snapkeep/internal/adapters/telemetry"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/snapkeep/internal/core/ports/mocks"
	"go.trai.ch/snapkeep/internal/engine/consumer"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const poll = time.Second

var opts = consumer.Options{Retries: 5, RetryDelay: 2 * time.Second, PollInterval: poll}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	l := mocks.NewMockLogger(ctrl)
	l.EXPECT().Debug(gomock.Any()).AnyTimes()
	l.EXPECT().Info(gomock.Any()).AnyTimes()
	l.EXPECT().Warn(gomock.Any()).AnyTimes()
	return l
}

type recorder struct {
	mu     sync.Mutex
	bodies []string
}

func (r *recorder) handle(_ context.Context, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, string(body))
	return nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

// settle lets every drain loop run through at least one poll.
func settle() {
	time.Sleep(2 * poll)
	synctest.Wait()
}

func TestConsumer_ConnectRetriesThenFails(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockBroker := mocks.NewMockBroker(ctrl)
		mockLogger := quietLogger(ctrl)

		mockBroker.EXPECT().Connect(gomock.Any()).Return(nil, errors.New("connection refused")).Times(6)
		mockLogger.EXPECT().Error(gomock.Any()).Times(6)

		c := consumer.New(mockBroker, mockLogger, telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()

		start := time.Now()
		err := c.Connect(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrBrokerConnection))
		assert.Equal(t, 10*time.Second, time.Since(start), "five fixed 2s delays")

		var zErr *zerr.Error
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, 6, zErr.Metadata()["attempts"])
	})
}

func TestConsumer_ConnectRetriesThenSucceeds(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockBroker := mocks.NewMockBroker(ctrl)
		mockLogger := quietLogger(ctrl)
		mockLogger.EXPECT().Error(gomock.Any()).Times(2)

		ch, err := memqueue.NewBroker().Connect(context.Background())
		require.NoError(t, err)

		gomock.InOrder(
			mockBroker.EXPECT().Connect(gomock.Any()).Return(nil, errors.New("refused")).Times(2),
			mockBroker.EXPECT().Connect(gomock.Any()).Return(ch, nil),
		)

		c := consumer.New(mockBroker, mockLogger, telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()

		start := time.Now()
		require.NoError(t, c.Connect(context.Background()))
		assert.Equal(t, 4*time.Second, time.Since(start))

		// A second Connect reuses the open channel.
		require.NoError(t, c.Connect(context.Background()))
	})
}

func TestConsumer_ConnectStartsHandledQueues(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()
		broker := memqueue.NewBroker()

		// Leftovers from a previous run.
		producer, err := broker.Connect(ctx)
		require.NoError(t, err)
		require.NoError(t, producer.DeclareQueue(ctx, domain.DefaultWriteQueue))
		require.NoError(t, producer.Publish(ctx, domain.DefaultWriteQueue, []byte("leftover")))

		rec := &recorder{}
		c := consumer.New(broker, quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()
		c.Handle(domain.DefaultWriteQueue, rec.handle)

		require.NoError(t, c.Connect(ctx))
		settle()

		assert.Equal(t, []string{"leftover"}, rec.got())
		queues := c.Queues()
		require.Len(t, queues, 1)
		assert.Equal(t, domain.DefaultWriteQueue, queues[0].Name)
		assert.Equal(t, consumer.StateIdle, queues[0].State)
		assert.Equal(t, uint64(1), queues[0].Processed)
	})
}

func TestConsumer_SendDrainsInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()

		rec := &recorder{}
		c := consumer.New(memqueue.NewBroker(), quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()
		c.Handle("q", rec.handle)
		require.NoError(t, c.Connect(ctx))

		for _, body := range []string{"1", "2", "3"} {
			require.NoError(t, c.Send(ctx, "q", []byte(body)))
		}
		settle()

		assert.Equal(t, []string{"1", "2", "3"}, rec.got())
	})
}

func TestConsumer_OneLoopPerQueue(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()

		var calls int
		var mu sync.Mutex
		c := consumer.New(memqueue.NewBroker(), quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()
		c.Handle("a", func(context.Context, []byte) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return nil
		})
		require.NoError(t, c.Connect(ctx))

		for range 5 {
			require.NoError(t, c.Send(ctx, "a", []byte("x")))
			require.NoError(t, c.Send(ctx, "b", []byte("y")))
		}
		settle()

		queues := c.Queues()
		require.Len(t, queues, 2)
		assert.Equal(t, "a", queues[0].Name)
		assert.Equal(t, "b", queues[1].Name)
		assert.Equal(t, uint64(5), queues[0].Processed)
		assert.Equal(t, uint64(5), queues[1].Processed, "messages without a handler are dropped")

		mu.Lock()
		assert.Equal(t, 5, calls, "each message is handled exactly once")
		mu.Unlock()
	})
}

func TestConsumer_FailingMessageDoesNotStopLoop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()
		mockLogger := quietLogger(ctrl)
		mockLogger.EXPECT().Error(gomock.Any()).Times(2)

		rec := &recorder{}
		c := consumer.New(memqueue.NewBroker(), mockLogger, telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()
		c.Handle("q", func(ctx context.Context, body []byte) error {
			switch string(body) {
			case "bad":
				return domain.ErrInvalidMessage
			case "panic":
				panic("boom")
			}
			return rec.handle(ctx, body)
		})
		require.NoError(t, c.Connect(ctx))

		for _, body := range []string{"bad", "panic", "good"} {
			require.NoError(t, c.Send(ctx, "q", []byte(body)))
		}
		settle()

		assert.Equal(t, []string{"good"}, rec.got())
		queues := c.Queues()
		require.Len(t, queues, 1)
		assert.Equal(t, uint64(1), queues[0].Processed)
		assert.Equal(t, uint64(2), queues[0].Failed)
	})
}

func TestConsumer_AcksBeforeHandling(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()
		broker := memqueue.NewBroker()

		release := make(chan struct{})
		c := consumer.New(broker, quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
		c.Handle("q", func(context.Context, []byte) error {
			<-release
			return nil
		})
		require.NoError(t, c.Connect(ctx))
		require.NoError(t, c.Send(ctx, "q", []byte("x")))
		synctest.Wait()

		queues := c.Queues()
		require.Len(t, queues, 1)
		assert.Equal(t, consumer.StateDraining, queues[0].State)

		// The handler is still running but the message has already left the queue.
		probe, err := broker.Connect(ctx)
		require.NoError(t, err)
		n, err := probe.PendingCount(ctx, "q")
		require.NoError(t, err)
		assert.Zero(t, n)

		close(release)
		require.NoError(t, c.Close())
		n, err = probe.PendingCount(ctx, "q")
		require.NoError(t, err)
		assert.Zero(t, n, "acked message is not redelivered")
	})
}

func TestConsumer_CheckBacklogBusy(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()
		mockBroker := mocks.NewMockBroker(ctrl)
		mockChannel := mocks.NewMockChannel(ctrl)

		mockBroker.EXPECT().Connect(gomock.Any()).Return(mockChannel, nil)
		mockChannel.EXPECT().PendingCount(gomock.Any(), "q").Return(3, nil)
		mockChannel.EXPECT().DeclareQueue(gomock.Any(), "q").Return(nil)
		// The started loop only fetches; nothing is acked, published or purged.
		mockChannel.EXPECT().Fetch(gomock.Any(), "q").Return(nil, nil).AnyTimes()
		mockChannel.EXPECT().Close().Return(nil)

		c := consumer.New(mockBroker, quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
		require.NoError(t, c.Connect(ctx))

		err := c.CheckBacklog(ctx, "q")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrQueueBusy))

		var zErr *zerr.Error
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, "q", zErr.Metadata()["queue"])
		assert.Equal(t, 3, zErr.Metadata()["pending"])

		settle()
		require.Len(t, c.Queues(), 1)
		require.NoError(t, c.Close())
	})
}

func TestConsumer_CheckBacklogEmpty(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()

		broker := memqueue.NewBroker()
		c := consumer.New(broker, quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()
		require.NoError(t, c.Connect(ctx))
		require.NoError(t, c.AssertQueue(ctx, "q"))

		require.NoError(t, c.CheckBacklog(ctx, "q"))
		assert.Empty(t, c.Queues(), "an empty queue starts no loop")
	})
}

func TestConsumer_CheckBacklogMissingQueue(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()
		mockLogger := quietLogger(ctrl)
		mockLogger.EXPECT().Error(gomock.Any())

		c := consumer.New(memqueue.NewBroker(), mockLogger, telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()
		require.NoError(t, c.Connect(ctx))

		err := c.CheckBacklog(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrQueueInspectFailed))
	})
}

func TestConsumer_RequiresConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	c := consumer.New(memqueue.NewBroker(), quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
	defer func() { _ = c.Close() }()

	assert.True(t, errors.Is(c.AssertQueue(ctx, "q"), domain.ErrBrokerNotConnected))
	assert.True(t, errors.Is(c.CheckBacklog(ctx, "q"), domain.ErrBrokerNotConnected))
	assert.True(t, errors.Is(c.Send(ctx, "q", []byte("x")), domain.ErrBrokerNotConnected))
}

func TestConsumer_Close(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()

		c := consumer.New(memqueue.NewBroker(), quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
		c.Handle("q", func(context.Context, []byte) error { return nil })
		require.NoError(t, c.Connect(ctx))

		require.NoError(t, c.Close())
		require.NoError(t, c.Close())

		assert.True(t, errors.Is(c.Send(ctx, "q", []byte("x")), domain.ErrConsumerClosed))
		assert.True(t, errors.Is(c.Connect(ctx), domain.ErrConsumerClosed))
	})
}

func TestConsumer_PublishAndPendingStartNoLoop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ctx := context.Background()

		c := consumer.New(memqueue.NewBroker(), quietLogger(ctrl), telemetry.NewNoOpTracer(), opts)
		defer func() { _ = c.Close() }()

		_, err := c.Pending(ctx, "q")
		assert.True(t, errors.Is(err, domain.ErrBrokerNotConnected))

		require.NoError(t, c.Connect(ctx))
		require.NoError(t, c.Publish(ctx, "q", []byte("a")))
		require.NoError(t, c.Publish(ctx, "q", []byte("b")))
		settle()

		n, err := c.Pending(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Empty(t, c.Queues())
	})
}
