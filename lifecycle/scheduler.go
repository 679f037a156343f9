// Copyright 2026 Sectworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lifecycle

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Key identifies a member within a community for retirement scheduling.
type Key struct {
	CommunityID uint64
	MemberID    uint64
}

// Trigger carries the authority role whose removal scheduled the notice.
// When several removals race, the most recent schedule wins and its trigger
// is the one announced.
type Trigger struct {
	RoleID   uint64
	RankName string
}

type scheduledEntry struct {
	timer   *time.Timer
	trigger Trigger
}

// Scheduler debounces retirement notices. Entries live only in memory, so a
// restart drops anything pending; the debounce window is short enough that
// this is acceptable.
//
// The mutex guards only the registry map. Callbacks always run outside the
// lock, and a fired timer re-checks its own entry identity under the lock
// before acting, which linearizes fire-versus-cancel races.
type Scheduler struct {
	logger  *slog.Logger
	mutex   sync.Mutex
	pending map[Key]*scheduledEntry
	stopped bool
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Scheduler{
		logger:  logger,
		pending: make(map[Key]*scheduledEntry),
	}
}

// Schedule registers a delayed fire for the key, replacing any pending entry
// (last write wins). The fire callback runs on the timer goroutine with the
// trigger it was scheduled with, and only if the entry is still current when
// the delay elapses.
func (s *Scheduler) Schedule(
	key Key,
	delay time.Duration,
	trigger Trigger,
	fire func(Trigger),
) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stopped {
		return
	}
	if existing, ok := s.pending[key]; ok {
		existing.timer.Stop()
		delete(s.pending, key)
		s.logger.Debug(
			"replaced pending retirement",
			"component", "lifecycle",
			"community", key.CommunityID,
			"member", key.MemberID,
		)
	}
	entry := &scheduledEntry{trigger: trigger}
	entry.timer = time.AfterFunc(delay, func() {
		s.mutex.Lock()
		current, ok := s.pending[key]
		if !ok || current != entry {
			// Cancelled or replaced after the timer already fired
			s.mutex.Unlock()
			return
		}
		delete(s.pending, key)
		s.mutex.Unlock()
		fire(entry.trigger)
	})
	s.pending[key] = entry
}

// Cancel removes a pending entry. Returns true when an entry was pending.
func (s *Scheduler) Cancel(key Key) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, ok := s.pending[key]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(s.pending, key)
	return true
}

// Pending reports whether a fire is scheduled for the key.
func (s *Scheduler) Pending(key Key) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.pending[key]
	return ok
}

// PendingCount returns the number of scheduled entries.
func (s *Scheduler) PendingCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.pending)
}

// Stop cancels every pending entry and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for key, entry := range s.pending {
		entry.timer.Stop()
		delete(s.pending, key)
	}
}
