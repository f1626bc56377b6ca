package sink

import (
	"salesroom/domain"
	"sync"
)

const DefaultConnectionBufferSize = 64

var _ domain.ConnectionSink = (*StreamSink)(nil)

// StreamSink is the outbound buffer of one connection.
// Deliver is called by the dispatcher, Outbound is drained by the transport handler,
// which is the only goroutine writing to the stream.
type StreamSink struct {
	outbound  chan domain.Envelope
	done      chan struct{}
	closeOnce sync.Once
}

func NewStreamSink(bufferSize int) *StreamSink {
	if bufferSize <= 0 {
		bufferSize = DefaultConnectionBufferSize
	}
	return &StreamSink{
		outbound: make(chan domain.Envelope, bufferSize),
		done:     make(chan struct{}),
	}
}

// Deliver never blocks. It returns false when the buffer is full or the sink is closed,
// in which case the envelope is lost for this connection only.
func (s *StreamSink) Deliver(env domain.Envelope) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.outbound <- env:
		return true
	default:
		return false
	}
}

func (s *StreamSink) Outbound() <-chan domain.Envelope { return s.outbound }

func (s *StreamSink) Done() <-chan struct{} { return s.done }

// Close stops further deliveries. Safe to call more than once.
func (s *StreamSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
