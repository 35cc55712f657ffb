package domain

import "go.trai.ch/zerr"

var (
	// ErrBrokerConnection is returned when the message broker stays unreachable after the retry budget.
	ErrBrokerConnection = zerr.New("failed to connect to message broker")

	// ErrBrokerNotConnected is returned when a queue operation runs before Connect succeeded.
	ErrBrokerNotConnected = zerr.New("message broker is not connected")

	// ErrQueueDeclareFailed is returned when a queue cannot be declared.
	ErrQueueDeclareFailed = zerr.New("failed to declare queue")

	// ErrQueueInspectFailed is returned when the pending message count of a queue cannot be read.
	ErrQueueInspectFailed = zerr.New("failed to inspect queue")

	// ErrQueuePublishFailed is returned when a message cannot be published.
	ErrQueuePublishFailed = zerr.New("failed to publish message")

	// ErrQueueFetchFailed is returned when a message cannot be fetched from a queue.
	ErrQueueFetchFailed = zerr.New("failed to fetch message")

	// ErrQueueAckFailed is returned when a delivery cannot be acknowledged.
	ErrQueueAckFailed = zerr.New("failed to acknowledge message")

	// ErrQueueBusy is returned by a backlog check while a queue still holds pending messages.
	ErrQueueBusy = zerr.New("please wait for messages to be done before continuing")

	// ErrConsumerClosed is returned when the consumer is used after Close.
	ErrConsumerClosed = zerr.New("queue consumer is closed")

	// ErrHandlerPanic is returned when a queue handler panics.
	ErrHandlerPanic = zerr.New("queue handler panicked")

	// ErrInvalidMessage is returned when a queue message is not a well-formed write message.
	ErrInvalidMessage = zerr.New("invalid queue message")

	// ErrInvalidPayload is returned when a snapshot payload is not a non-empty JSON object.
	ErrInvalidPayload = zerr.New("snapshot data must be a non-empty JSON object")

	// ErrInvalidRootData is returned when root data is not an array of objects or of arrays.
	ErrInvalidRootData = zerr.New("root data must be an array of objects or an array of arrays")

	// ErrSnapshotNotFound is returned when a symbol has no current file.
	ErrSnapshotNotFound = zerr.New("no snapshot stored for symbol")

	// ErrStoreReadFailed is returned when a stored file cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read stored file")

	// ErrStoreWriteFailed is returned when a stored file cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write stored file")

	// ErrStoreCreateFailed is returned when a store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create store directory")

	// ErrStoreDecodeFailed is returned when a stored file cannot be decoded.
	ErrStoreDecodeFailed = zerr.New("failed to decode stored file")

	// ErrStoreEncodeFailed is returned when a record cannot be encoded for storage.
	ErrStoreEncodeFailed = zerr.New("failed to encode record")

	// ErrCompressFailed is returned when data cannot be compressed.
	ErrCompressFailed = zerr.New("failed to compress data")

	// ErrDecompressFailed is returned when data cannot be decompressed.
	ErrDecompressFailed = zerr.New("failed to decompress data")

	// ErrCacheConnection is returned when the remote cache stays unreachable after the retry budget.
	ErrCacheConnection = zerr.New("failed to connect to remote cache")

	// ErrCacheEncodeFailed is returned when a value cannot be serialized for the cache.
	ErrCacheEncodeFailed = zerr.New("failed to encode cache value")

	// ErrCacheDecodeFailed is returned when a cached value cannot be deserialized.
	ErrCacheDecodeFailed = zerr.New("failed to decode cache value")

	// ErrCacheMiss is returned when a requested key is not found in the cache.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a configuration value is not supported.
	ErrInvalidConfig = zerr.New("invalid configuration")
)
