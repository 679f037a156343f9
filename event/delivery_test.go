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

package event

import (
	"testing"
	"time"
)

// TestSubscriberDeliverNonBlocking verifies that deliver does not block when
// the channel buffer is full. A blocking send here would let one slow
// consumer stall every publisher on the bus.
func TestSubscriberDeliverNonBlocking(t *testing.T) {
	const bufferSize = 5
	sub := newSubscriber(bufferSize)

	// Fill the buffer completely
	for i := range bufferSize {
		delivered, err := sub.deliver(NewEvent("test", i))
		if err != nil {
			t.Fatalf("unexpected error on buffered deliver: %v", err)
		}
		if !delivered {
			t.Fatalf("expected buffered deliver %d to succeed", i)
		}
	}

	// deliver to the full buffer should return immediately without blocking.
	done := make(chan bool, 1)
	go func() {
		delivered, _ := sub.deliver(NewEvent("test", "overflow"))
		done <- delivered
	}()

	select {
	case delivered := <-done:
		if delivered {
			t.Fatal("expected overflow deliver to report a drop")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("deliver blocked on full channel buffer; expected non-blocking drop")
	}

	// Verify the original buffered events are still present
	for range bufferSize {
		select {
		case <-sub.ch:
			// Expected
		default:
			t.Fatal("expected buffered event not found")
		}
	}

	// Verify no extra event was inserted (the overflow should have been dropped)
	select {
	case evt := <-sub.ch:
		t.Fatalf("unexpected extra event in channel: %v", evt)
	default:
		// Good: buffer only contains the original events
	}
}

// TestSubscriberDeliverAfterClose verifies that deliver to a closed
// subscriber returns without error and does not block.
func TestSubscriberDeliverAfterClose(t *testing.T) {
	sub := newSubscriber(5)
	sub.close()

	done := make(chan error, 1)
	go func() {
		_, err := sub.deliver(NewEvent("test", "after-close"))
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("deliver after close should return nil, got: %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("deliver blocked after close")
	}
}
