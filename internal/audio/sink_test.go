package audio

import (
	"context"
	"errors"
	"testing"
)

func TestRemoteSink_commands(t *testing.T) {
	s := NewRemoteSink()
	ctx := context.Background()

	if err := s.Play(ctx); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Play before Load = %v, want ErrNoSource", err)
	}

	if err := s.Load("a.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.SetVolume(0.6)
	if err := s.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	cmd := s.Command()
	if cmd.URL != "a.mp3" || !cmd.Playing || cmd.Volume != 0.6 {
		t.Errorf("unexpected command %+v", cmd)
	}
	seq := cmd.Seq

	if err := s.Load("b.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cmd = s.Command()
	if cmd.Playing {
		t.Error("loading a new source should stop playback until Play")
	}
	if cmd.Seq <= seq {
		t.Errorf("Seq should increase, got %d after %d", cmd.Seq, seq)
	}
}

func TestRemoteSink_unchangedDoesNotBumpSeq(t *testing.T) {
	s := NewRemoteSink()
	s.SetVolume(0.5)
	seq := s.Command().Seq
	s.SetVolume(0.5)
	if s.Command().Seq != seq {
		t.Errorf("identical command should keep Seq %d, got %d", seq, s.Command().Seq)
	}
}

func TestRemoteSink_close(t *testing.T) {
	s := NewRemoteSink()
	_ = s.Load("a.mp3")
	_ = s.Play(context.Background())

	var last Command
	s.Subscribe(func(c Command) { last = c })

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if last.Playing {
		t.Error("subscribers should see playback stopped on close")
	}
	if err := s.Close(); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("second Close = %v, want ErrSinkClosed", err)
	}
	if err := s.Load("b.mp3"); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Load after Close = %v, want ErrSinkClosed", err)
	}
}

func TestRemoteSink_playCancelledContext(t *testing.T) {
	s := NewRemoteSink()
	_ = s.Load("a.mp3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Play(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Play with cancelled ctx = %v, want context.Canceled", err)
	}
}
