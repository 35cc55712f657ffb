package domain

// Delivery is one message fetched from a queue.
type Delivery struct {
	// Tag identifies the delivery for acknowledgement.
	Tag uint64
	// Queue is the name of the queue the message came from.
	Queue string
	// Body is the raw message content.
	Body []byte
}
