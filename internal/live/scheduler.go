package live

import (
	"sync"
	"time"
)

// Clock reports the playback position since the session opened. Injected so
// tests can drive scheduling without real time.
type Clock func() time.Duration

// Buffer is one scheduled chunk of playback audio. Start is relative to
// session open.
type Buffer struct {
	Seq      uint64
	Start    time.Duration
	Duration time.Duration
	Samples  []float32
}

// PlaybackSink delivers a scheduled buffer towards the output device.
type PlaybackSink func(Buffer)

// PlaybackQueue schedules inbound audio buffers for gapless, strictly ordered
// playback. Each buffer starts exactly where the previous one ends, never
// earlier than the current playback position. Buffers stay tracked until
// completed so a forced halt can drop every pending one without leaking.
type PlaybackQueue struct {
	mu         sync.Mutex
	clock      Clock
	sink       PlaybackSink
	sampleRate int
	nextStart  time.Duration
	pending    map[uint64]Buffer
	seq        uint64
	halted     bool
}

// NewPlaybackQueue creates a queue for audio at the given sample rate.
func NewPlaybackQueue(sampleRate int, clock Clock, sink PlaybackSink) *PlaybackQueue {
	return &PlaybackQueue{
		clock:      clock,
		sink:       sink,
		sampleRate: sampleRate,
		pending:    make(map[uint64]Buffer),
	}
}

// Schedule assigns the next start time to the samples and hands them to the
// sink. Returns false after Halt; late arrivals are simply discarded.
func (q *PlaybackQueue) Schedule(samples []float32) (Buffer, bool) {
	q.mu.Lock()
	if q.halted {
		q.mu.Unlock()
		return Buffer{}, false
	}

	start := q.nextStart
	if now := q.clock(); now > start {
		start = now
	}
	dur := time.Duration(float64(len(samples)) / float64(q.sampleRate) * float64(time.Second))

	q.seq++
	buf := Buffer{
		Seq:      q.seq,
		Start:    start,
		Duration: dur,
		Samples:  samples,
	}
	q.nextStart = start + dur
	q.pending[buf.Seq] = buf
	sink := q.sink
	q.mu.Unlock()

	if sink != nil {
		sink(buf)
	}
	return buf, true
}

// Complete releases a buffer from tracking once it has finished playing.
func (q *PlaybackQueue) Complete(seq uint64) {
	q.mu.Lock()
	delete(q.pending, seq)
	q.mu.Unlock()
}

// Halt forcibly drops all pending buffers and refuses further scheduling.
// Returns the number of buffers that were still pending.
func (q *PlaybackQueue) Halt() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	q.pending = make(map[uint64]Buffer)
	q.halted = true
	return n
}

// Pending reports how many scheduled buffers have not finished playing.
func (q *PlaybackQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
