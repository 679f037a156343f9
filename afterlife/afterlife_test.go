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

package afterlife

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sectworks/warden/database"
	"github.com/sectworks/warden/event"
	"github.com/sectworks/warden/notify"
	"github.com/sectworks/warden/platform"
	"github.com/sectworks/warden/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guardianRoleId  = uint64(100)
	trackableRoleId = uint64(999)
)

type mockPoints struct {
	points int64
	err    error
}

func (p *mockPoints) CurrentPoints(
	ctx context.Context,
	communityId uint64,
	memberId uint64,
) (int64, error) {
	return p.points, p.err
}

type postedMessage struct {
	channelId uint64
	msg       platform.Message
}

type recordingMessenger struct {
	channels []platform.Channel
	posted   []postedMessage
}

func (m *recordingMessenger) ResolveChannel(
	ctx context.Context,
	communityId uint64,
	channelId uint64,
) (*platform.Channel, error) {
	for _, channel := range m.channels {
		if channel.ID == channelId {
			return &channel, nil
		}
	}
	return nil, nil
}

func (m *recordingMessenger) Channels(
	ctx context.Context,
	communityId uint64,
) ([]platform.Channel, error) {
	return m.channels, nil
}

func (m *recordingMessenger) PostMessage(
	ctx context.Context,
	channelId uint64,
	msg platform.Message,
) error {
	m.posted = append(m.posted, postedMessage{channelId: channelId, msg: msg})
	return nil
}

func (m *recordingMessenger) SendDirectMessage(
	ctx context.Context,
	memberId uint64,
	msg platform.Message,
) error {
	return nil
}

func testRegistry(t *testing.T) *roles.Registry {
	t.Helper()
	registry, err := roles.NewRegistry(
		[]roles.AuthorityRole{
			{ID: guardianRoleId, Name: "Guardian"},
		},
		nil,
		trackableRoleId,
	)
	require.NoError(t, err)
	return registry
}

func newTestTracker(
	t *testing.T,
	points *mockPoints,
) (*Tracker, *recordingMessenger, *database.Database) {
	t.Helper()
	db, err := database.New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck
		db.Close()
	})
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	messenger := &recordingMessenger{
		channels: []platform.Channel{
			{Name: "general", ID: 10, Postable: true},
		},
	}
	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{
		Messenger: messenger,
	})
	tracker, err := New(TrackerConfig{
		EventBus:   bus,
		Database:   db,
		Dispatcher: dispatcher,
		Registry:   testRegistry(t),
		Points:     points,
	})
	require.NoError(t, err)
	return tracker, messenger, db
}

func guardian() platform.Role {
	return platform.Role{ID: guardianRoleId, Name: "Guardian", Position: 50}
}

func haunted() platform.Role {
	return platform.Role{ID: trackableRoleId, Name: "Haunted", Position: 1}
}

func snapshot(
	communityId uint64,
	memberId uint64,
	memberRoles ...platform.Role,
) platform.MemberSnapshot {
	return platform.MemberSnapshot{
		Username:    "wanderer",
		DisplayName: "Wanderer",
		CommunityID: communityId,
		MemberID:    memberId,
		JoinedAt:    time.Now().Add(-72 * time.Hour),
		Roles:       memberRoles,
	}
}

func memberLeft(tr *Tracker, member platform.MemberSnapshot) {
	tr.handleMemberLeft(event.NewEvent(
		platform.MemberLeftEventType,
		platform.MemberLeftEvent{Member: member},
	))
}

func memberJoined(tr *Tracker, member platform.MemberSnapshot) {
	tr.handleMemberJoined(event.NewEvent(
		platform.MemberJoinedEventType,
		platform.MemberJoinedEvent{Member: member},
	))
}

func trackableGranted(tr *Tracker, member platform.MemberSnapshot) {
	tr.handleRolesChanged(event.NewEvent(
		platform.MemberRolesChangedEventType,
		platform.MemberRolesChangedEvent{Member: member, Before: nil},
	))
}

func titles(posted []postedMessage) []string {
	ret := make([]string, 0, len(posted))
	for _, post := range posted {
		ret = append(ret, post.msg.Title)
	}
	return ret
}

func TestDepartureAlwaysRecorded(t *testing.T) {
	communityId := uint64(800)
	tracker, messenger, db := newTestTracker(t, &mockPoints{points: 300})

	memberLeft(tracker, snapshot(communityId, 7, guardian()))

	record, err := db.DepartedMember(communityId, 7)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 1, record.TimesLeft)
	assert.False(t, record.HadTrackableRole)
	assert.Equal(t, "Guardian", record.HighestRole)
	assert.Equal(t, int64(300), record.TotalPoints)
	assert.NotEmpty(t, record.FuneralMessage)
	// No trackable role, no funeral
	assert.Empty(t, messenger.posted)
}

func TestFuneralForTrackableHolder(t *testing.T) {
	communityId := uint64(801)
	tracker, messenger, _ := newTestTracker(t, &mockPoints{points: 300})

	memberLeft(tracker, snapshot(communityId, 7, guardian(), haunted()))

	require.Len(t, messenger.posted, 1)
	msg := messenger.posted[0].msg
	assert.Equal(t, "Funeral Rites", msg.Title)
	assert.Contains(t, msg.Body, "Wanderer")
	assert.Contains(t, msg.Body, "Final Demonic Rank: Guardian")
	assert.Contains(t, msg.Body, "Blood Contribution: 300 points")
	assert.Contains(t, msg.Body, "Time in Dark Brotherhood: 3 days")
}

func TestRepeatDepartureIncrementsTimesLeft(t *testing.T) {
	communityId := uint64(802)
	tracker, _, db := newTestTracker(t, &mockPoints{})

	memberLeft(tracker, snapshot(communityId, 7))
	memberLeft(tracker, snapshot(communityId, 7))

	record, err := db.DepartedMember(communityId, 7)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 2, record.TimesLeft)
	assert.Nil(t, record.ReturnedAt)
}

func TestJoinWithoutRecordDoesNothing(t *testing.T) {
	communityId := uint64(803)
	tracker, messenger, db := newTestTracker(t, &mockPoints{})

	memberJoined(tracker, snapshot(communityId, 7, haunted()))

	assert.Empty(t, messenger.posted)
	pending, err := db.HasPendingReincarnation(communityId, 7)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestSilentTrackingWithoutTrackableRole(t *testing.T) {
	communityId := uint64(804)
	tracker, messenger, db := newTestTracker(t, &mockPoints{})

	// Left without the trackable role; even returning with it stays silent
	memberLeft(tracker, snapshot(communityId, 7, guardian()))
	memberJoined(tracker, snapshot(communityId, 7, haunted()))

	assert.Empty(t, messenger.posted)
	pending, err := db.HasPendingReincarnation(communityId, 7)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestReincarnationOnJoinWithRole(t *testing.T) {
	communityId := uint64(805)
	tracker, messenger, db := newTestTracker(t, &mockPoints{points: 300})

	memberLeft(tracker, snapshot(communityId, 7, guardian(), haunted()))
	memberJoined(tracker, snapshot(communityId, 7, haunted()))

	require.Equal(
		t,
		[]string{"Funeral Rites", "Reincarnation"},
		titles(messenger.posted),
	)
	msg := messenger.posted[1].msg
	assert.Contains(t, msg.Body, "Time in Shadow Realm")
	assert.Contains(t, msg.Body, "Previous Demonic Rank: Guardian")
	assert.Equal(t, uint64(7), msg.MentionID)

	record, err := db.DepartedMember(communityId, 7)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.NotNil(t, record.ReturnedAt)

	// A duplicate join event finds the cycle already claimed
	memberJoined(tracker, snapshot(communityId, 7, haunted()))
	assert.Len(t, messenger.posted, 2)
}

func TestDeferredReincarnation(t *testing.T) {
	communityId := uint64(806)
	tracker, messenger, db := newTestTracker(t, &mockPoints{})

	memberLeft(tracker, snapshot(communityId, 7, haunted()))
	record, err := db.DepartedMember(communityId, 7)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, 1, record.TimesLeft)

	// Roles were not restored on rejoin, so the notice waits on the role
	memberJoined(tracker, snapshot(communityId, 7))
	require.Equal(t, []string{"Funeral Rites"}, titles(messenger.posted))
	pending, err := db.HasPendingReincarnation(communityId, 7)
	require.NoError(t, err)
	assert.True(t, pending)

	// Granting the role releases exactly one deferred notice
	trackableGranted(tracker, snapshot(communityId, 7, haunted()))
	require.Equal(
		t,
		[]string{"Funeral Rites", "Reincarnation"},
		titles(messenger.posted),
	)
	pending, err = db.HasPendingReincarnation(communityId, 7)
	require.NoError(t, err)
	assert.False(t, pending)

	record, err = db.DepartedMember(communityId, 7)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.NotNil(t, record.ReturnedAt)

	// A duplicate grant has no marker left to claim
	trackableGranted(tracker, snapshot(communityId, 7, haunted()))
	assert.Len(t, messenger.posted, 2)
}

func TestTrackableGrantWithoutHistory(t *testing.T) {
	communityId := uint64(807)
	tracker, messenger, _ := newTestTracker(t, &mockPoints{})

	// Ordinary members picking up the role have nothing pending
	trackableGranted(tracker, snapshot(communityId, 7, haunted()))
	assert.Empty(t, messenger.posted)
}

func TestPointsLookupFailureDefaultsZero(t *testing.T) {
	communityId := uint64(808)
	tracker, messenger, db := newTestTracker(
		t,
		&mockPoints{err: errors.New("stats backend down")},
	)

	memberLeft(tracker, snapshot(communityId, 7, haunted()))

	record, err := db.DepartedMember(communityId, 7)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(0), record.TotalPoints)
	require.Len(t, messenger.posted, 1)
	assert.NotContains(t, messenger.posted[0].msg.Body, "Blood Contribution")
}

func TestOrdinalSuffixes(t *testing.T) {
	assert.Equal(t, "1st", ordinal(1))
	assert.Equal(t, "2nd", ordinal(2))
	assert.Equal(t, "3rd", ordinal(3))
	assert.Equal(t, "4th", ordinal(4))
	assert.Equal(t, "11th", ordinal(11))
	assert.Equal(t, "12th", ordinal(12))
	assert.Equal(t, "13th", ordinal(13))
	assert.Equal(t, "21st", ordinal(21))
	assert.Equal(t, "102nd", ordinal(102))
}

func TestFormatTimeAway(t *testing.T) {
	assert.Equal(t, "a few moments", formatTimeAway(30*time.Second))
	assert.Equal(t, "5 minutes", formatTimeAway(5*time.Minute))
	assert.Equal(t, "1 hour", formatTimeAway(90*time.Minute))
	assert.Equal(t, "3 hours", formatTimeAway(3*time.Hour+10*time.Minute))
	assert.Equal(t, "1 day", formatTimeAway(25*time.Hour))
	assert.Equal(t, "12 days", formatTimeAway(12*24*time.Hour+5*time.Hour))
}
