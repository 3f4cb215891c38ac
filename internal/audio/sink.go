package audio

import (
	"context"
	"errors"
	"sync"

	"parallel-timeline/internal/observable"
)

// Sink is the single playable audio output owned by a Switchboard.
// Implementations must not call back into the Switchboard from inside these
// methods; playback events (track end, errors) are reported asynchronously.
type Sink interface {
	// Load sets the source of the sink without starting playback.
	Load(url string) error
	// Play starts or resumes the loaded source.
	Play(ctx context.Context) error
	// Pause stops playback, keeping the loaded source.
	Pause()
	// SetVolume sets the effective output volume in [0,1].
	SetVolume(v float64)
	// Close releases the sink. Calls after Close fail with ErrSinkClosed.
	Close() error
}

var (
	// ErrSinkClosed is returned by a sink that has been released.
	ErrSinkClosed = errors.New("audio sink closed")

	// ErrNoSource is returned when Play is called before anything was loaded.
	ErrNoSource = errors.New("audio sink has no source loaded")
)

// Command is what a remote client must do with its audio element.
type Command struct {
	URL     string  `json:"url"`
	Playing bool    `json:"playing"`
	Volume  float64 `json:"volume"`
	// Seq increases on every change so clients can skip stale commands.
	Seq uint64 `json:"seq"`
}

// RemoteSink is a Sink whose playback happens on a remote client. Every call
// publishes a new Command; the client polls or subscribes and carries it out,
// reporting track ends and failures back to the Switchboard.
type RemoteSink struct {
	mu     sync.Mutex
	cmd    *observable.Value[Command]
	closed bool
}

// NewRemoteSink returns an open RemoteSink with nothing loaded.
func NewRemoteSink() *RemoteSink {
	return &RemoteSink{cmd: observable.New(Command{})}
}

// Load implements Sink.Load.
func (s *RemoteSink) Load(url string) error {
	return s.apply(func(c Command) Command {
		if c.URL != url {
			c.Playing = false
		}
		c.URL = url
		return c
	})
}

// Play implements Sink.Play.
func (s *RemoteSink) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Command().URL == "" {
		return ErrNoSource
	}
	return s.apply(func(c Command) Command {
		c.Playing = true
		return c
	})
}

// Pause implements Sink.Pause.
func (s *RemoteSink) Pause() {
	_ = s.apply(func(c Command) Command {
		c.Playing = false
		return c
	})
}

// SetVolume implements Sink.SetVolume.
func (s *RemoteSink) SetVolume(v float64) {
	_ = s.apply(func(c Command) Command {
		c.Volume = clamp01(v)
		return c
	})
}

// Close implements Sink.Close. Closing twice returns ErrSinkClosed.
func (s *RemoteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	s.cmd.Update(func(c Command) Command {
		c.Playing = false
		c.Seq++
		return c
	})
	s.cmd.Close()
	return nil
}

// Command returns the latest command for the client.
func (s *RemoteSink) Command() Command {
	return s.cmd.Get()
}

// Subscribe registers fn for command changes; see observable.Value.Subscribe.
func (s *RemoteSink) Subscribe(fn func(Command)) (cancel func()) {
	return s.cmd.Subscribe(fn)
}

func (s *RemoteSink) apply(fn func(Command) Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.cmd.Update(func(c Command) Command {
		next := fn(c)
		if next != c {
			next.Seq = c.Seq + 1
		}
		return next
	})
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
