package cache

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/scrapesheet/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestStore_PutGet(t *testing.T) {
	s := newStore(10, time.Hour, time.Now)
	b := &models.AllDetailsBundle{UHFHeader: "h"}

	id := s.Put(b)
	if !strings.HasPrefix(id, "bundle-") {
		t.Errorf("unexpected id %q", id)
	}
	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != b {
		t.Error("Get returned a different bundle")
	}
}

func TestStore_MissingIsNoData(t *testing.T) {
	s := newStore(10, time.Hour, time.Now)
	if _, err := s.Get("bundle-missing"); !errors.Is(err, models.ErrNoData) {
		t.Errorf("want ErrNoData, got %v", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newStore(10, time.Minute, clock.now)

	id := s.Put(&models.AllDetailsBundle{})
	clock.t = clock.t.Add(30 * time.Second)
	if _, err := s.Get(id); err != nil {
		t.Fatalf("bundle should still be live: %v", err)
	}

	clock.t = clock.t.Add(time.Minute)
	if _, err := s.Get(id); !errors.Is(err, models.ErrNoData) {
		t.Errorf("want ErrNoData after ttl, got %v", err)
	}

	s.sweep()
	if s.Len() != 0 {
		t.Errorf("sweep should drop expired entries, len=%d", s.Len())
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := newStore(2, time.Hour, clock.now)

	first := s.Put(&models.AllDetailsBundle{})
	clock.t = clock.t.Add(time.Second)
	second := s.Put(&models.AllDetailsBundle{})
	clock.t = clock.t.Add(time.Second)
	third := s.Put(&models.AllDetailsBundle{})

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if _, err := s.Get(first); err == nil {
		t.Error("oldest entry should have been evicted")
	}
	for _, id := range []string{second, third} {
		if _, err := s.Get(id); err != nil {
			t.Errorf("%s should be present: %v", id, err)
		}
	}
}

func TestStore_CloseIdempotent(t *testing.T) {
	s := New(1, time.Hour)
	s.Close()
	s.Close()
}
