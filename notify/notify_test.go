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

package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sectworks/warden/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postedMessage struct {
	channelId uint64
	msg       platform.Message
}

type mockMessenger struct {
	channels    []platform.Channel
	resolveErr  error
	channelsErr error
	postErr     error
	dmErr       error
	posted      []postedMessage
	dms         []platform.Message
}

func (m *mockMessenger) ResolveChannel(
	ctx context.Context,
	communityId uint64,
	channelId uint64,
) (*platform.Channel, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	for _, channel := range m.channels {
		if channel.ID == channelId {
			return &channel, nil
		}
	}
	return nil, nil
}

func (m *mockMessenger) Channels(
	ctx context.Context,
	communityId uint64,
) ([]platform.Channel, error) {
	if m.channelsErr != nil {
		return nil, m.channelsErr
	}
	return m.channels, nil
}

func (m *mockMessenger) PostMessage(
	ctx context.Context,
	channelId uint64,
	msg platform.Message,
) error {
	if m.postErr != nil {
		return m.postErr
	}
	m.posted = append(m.posted, postedMessage{channelId: channelId, msg: msg})
	return nil
}

func (m *mockMessenger) SendDirectMessage(
	ctx context.Context,
	memberId uint64,
	msg platform.Message,
) error {
	if m.dmErr != nil {
		return m.dmErr
	}
	m.dms = append(m.dms, msg)
	return nil
}

func newTestDispatcher(
	t *testing.T,
	messenger *mockMessenger,
) *Dispatcher {
	t.Helper()
	return NewDispatcher(DispatcherConfig{
		Messenger: messenger,
	})
}

func TestDeliverPrimaryChannel(t *testing.T) {
	messenger := &mockMessenger{
		channels: []platform.Channel{
			{Name: "general", ID: 10, Postable: true},
			{Name: "retirements", ID: 20, Postable: true},
		},
	}
	d := newTestDispatcher(t, messenger)

	d.Deliver(context.Background(), 1, 20, platform.Message{Title: "notice"})

	require.Len(t, messenger.posted, 1)
	assert.Equal(t, uint64(20), messenger.posted[0].channelId)
}

func TestDeliverFallbackNameOrder(t *testing.T) {
	// The cascade prefers "general" even though "announcements" appears
	// earlier in the channel list
	messenger := &mockMessenger{
		channels: []platform.Channel{
			{Name: "random", ID: 5, Postable: true},
			{Name: "announcements", ID: 11, Postable: true},
			{Name: "general", ID: 12, Postable: true},
		},
	}
	d := newTestDispatcher(t, messenger)

	d.Deliver(context.Background(), 1, 0, platform.Message{Title: "notice"})

	require.Len(t, messenger.posted, 1)
	assert.Equal(t, uint64(12), messenger.posted[0].channelId)
}

func TestDeliverSkipsUnpostablePrimary(t *testing.T) {
	messenger := &mockMessenger{
		channels: []platform.Channel{
			{Name: "locked", ID: 20, Postable: false},
			{Name: "announcements", ID: 11, Postable: true},
		},
	}
	d := newTestDispatcher(t, messenger)

	d.Deliver(context.Background(), 1, 20, platform.Message{Title: "notice"})

	require.Len(t, messenger.posted, 1)
	assert.Equal(t, uint64(11), messenger.posted[0].channelId)
}

func TestDeliverFirstPostableWhenNoNameMatches(t *testing.T) {
	messenger := &mockMessenger{
		channels: []platform.Channel{
			{Name: "lounge", ID: 30, Postable: false},
			{Name: "hall", ID: 31, Postable: true},
			{Name: "archive", ID: 32, Postable: true},
		},
	}
	d := newTestDispatcher(t, messenger)

	d.Deliver(context.Background(), 1, 0, platform.Message{Title: "notice"})

	require.Len(t, messenger.posted, 1)
	assert.Equal(t, uint64(31), messenger.posted[0].channelId)
}

func TestDeliverNothingPostable(t *testing.T) {
	messenger := &mockMessenger{
		channels: []platform.Channel{
			{Name: "general", ID: 10, Postable: false},
		},
	}
	d := newTestDispatcher(t, messenger)

	d.Deliver(context.Background(), 1, 0, platform.Message{Title: "notice"})

	assert.Empty(t, messenger.posted)
}

func TestDeliverChannelListFailure(t *testing.T) {
	messenger := &mockMessenger{
		channelsErr: errors.New("gateway timeout"),
	}
	d := newTestDispatcher(t, messenger)

	// Nothing propagates; the notice is dropped
	d.Deliver(context.Background(), 1, 0, platform.Message{Title: "notice"})

	assert.Empty(t, messenger.posted)
}

func TestDirectMessageBestEffort(t *testing.T) {
	messenger := &mockMessenger{
		dmErr: errors.New("DMs disabled"),
	}
	d := newTestDispatcher(t, messenger)

	// Failure is swallowed
	d.DirectMessage(context.Background(), 42, platform.Message{Body: "bye"})
	assert.Empty(t, messenger.dms)

	messenger.dmErr = nil
	d.DirectMessage(context.Background(), 42, platform.Message{Body: "bye"})
	assert.Len(t, messenger.dms, 1)
}
