package session

import (
	"errors"
	"testing"
	"time"
)

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := &Session{ID: "old", lastSeen: t0}
	recent := &Session{ID: "recent", lastSeen: t0.Add(time.Hour)}

	t.Run("add", func(t *testing.T) {
		if err := repo.Add(old); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if err := repo.Add(recent); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if err := repo.Add(old); !errors.Is(err, ErrSessionExists) {
			t.Errorf("duplicate Add: expected ErrSessionExists, got %v", err)
		}
		if repo.Count() != 2 {
			t.Errorf("Count = %d, want 2", repo.Count())
		}
	})

	t.Run("get", func(t *testing.T) {
		if s, ok := repo.Get("old"); !ok || s != old {
			t.Error("Get old failed")
		}
		if _, ok := repo.Get("missing"); ok {
			t.Error("Get missing should fail")
		}
	})

	t.Run("remove_idle", func(t *testing.T) {
		idle := repo.RemoveIdle(t0.Add(30 * time.Minute))
		if len(idle) != 1 || idle[0] != old {
			t.Fatalf("RemoveIdle = %v", idle)
		}
		if repo.Count() != 1 {
			t.Errorf("Count = %d, want 1", repo.Count())
		}
	})

	t.Run("remove_idempotent", func(t *testing.T) {
		if s, ok := repo.Remove("recent"); !ok || s != recent {
			t.Error("Remove recent failed")
		}
		if _, ok := repo.Remove("recent"); ok {
			t.Error("second Remove should report not found")
		}
	})

	t.Run("remove_all", func(t *testing.T) {
		repo.Add(&Session{ID: "a"})
		repo.Add(&Session{ID: "b"})
		if all := repo.RemoveAll(); len(all) != 2 {
			t.Errorf("RemoveAll returned %d sessions", len(all))
		}
		if repo.Count() != 0 {
			t.Errorf("Count = %d, want 0", repo.Count())
		}
	})
}

func TestScrollRecorder(t *testing.T) {
	var r ScrollRecorder
	r.CancelScroll()
	if r.Command().Seq != 0 {
		t.Error("cancel without a scroll should do nothing")
	}
	r.ScrollToIndex(3)
	r.CancelScroll()
	r.CancelScroll()
	cmd := r.Command()
	if cmd.Index != 3 || !cmd.Canceled || cmd.Seq != 2 {
		t.Errorf("unexpected command %+v", cmd)
	}
	r.ScrollToIndex(4)
	if cmd := r.Command(); cmd.Canceled || cmd.Seq != 3 {
		t.Errorf("new scroll should clear cancel: %+v", cmd)
	}
}
