package amqp

import (
	"context"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// FakeChannel records calls made through the adapter.
type FakeChannel struct {
	Declared  []string
	Passive   map[string]int
	Pending   []amqp091.Delivery
	Acked     []uint64
	Published []amqp091.Publishing
	Keys      []string
	Closed    bool
	Err       error
}

func (f *FakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	if f.Err != nil {
		return amqp091.Queue{}, f.Err
	}
	if durable {
		f.Declared = append(f.Declared, name)
	}
	return amqp091.Queue{Name: name}, nil
}

func (f *FakeChannel) QueueDeclarePassive(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	n, ok := f.Passive[name]
	if !ok {
		return amqp091.Queue{}, &amqp091.Error{Code: amqp091.NotFound, Reason: "NOT_FOUND - no queue '" + name + "'"}
	}
	return amqp091.Queue{Name: name, Messages: n}, nil
}

func (f *FakeChannel) Get(_ string, autoAck bool) (amqp091.Delivery, bool, error) {
	if f.Err != nil {
		return amqp091.Delivery{}, false, f.Err
	}
	if autoAck {
		panic("adapter must not auto-ack")
	}
	if len(f.Pending) == 0 {
		return amqp091.Delivery{}, false, nil
	}
	d := f.Pending[0]
	f.Pending = f.Pending[1:]
	return d, true, nil
}

func (f *FakeChannel) Ack(tag uint64, _ bool) error {
	f.Acked = append(f.Acked, tag)
	return nil
}

func (f *FakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	f.Keys = append(f.Keys, key)
	f.Published = append(f.Published, msg)
	return nil
}

func (f *FakeChannel) Close() error {
	f.Closed = true
	return nil
}

// FakeConnection hands out the main channel first and fresh probe channels afterwards.
type FakeConnection struct {
	Main    *FakeChannel
	Probes  []*FakeChannel
	Closed  bool
	opened  int
	ChanErr error
}

func (f *FakeConnection) channel() (channel, error) {
	if f.ChanErr != nil {
		return nil, f.ChanErr
	}
	f.opened++
	if f.opened == 1 {
		return f.Main, nil
	}
	probe := &FakeChannel{Passive: f.Main.Passive}
	f.Probes = append(f.Probes, probe)
	return probe, nil
}

func (f *FakeConnection) Close() error {
	f.Closed = true
	return nil
}

// NewBrokerWithConnection returns a Broker that hands out conn, or dialErr if set.
func NewBrokerWithConnection(conn *FakeConnection, dialErr error) *Broker {
	return &Broker{url: "amqp://test", dial: func(string) (connection, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return conn, nil
	}}
}
