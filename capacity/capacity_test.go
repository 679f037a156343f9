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

package capacity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sectworks/warden/database"
	"github.com/sectworks/warden/database/models"
	"github.com/sectworks/warden/event"
	"github.com/sectworks/warden/notify"
	"github.com/sectworks/warden/platform"
	"github.com/sectworks/warden/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guardianRoleId   = uint64(100)
	upperDemonRoleId = uint64(200) // tier, not capacity tracked
)

type revocation struct {
	communityId uint64
	memberId    uint64
	roleId      uint64
	reason      string
}

type mockDirectory struct {
	holders     []uint64
	holdersErr  error
	revokeErr   error
	revocations []revocation
}

func (d *mockDirectory) RoleHolders(
	ctx context.Context,
	communityId uint64,
	roleId uint64,
) ([]uint64, error) {
	return d.holders, d.holdersErr
}

func (d *mockDirectory) RevokeRole(
	ctx context.Context,
	communityId uint64,
	memberId uint64,
	roleId uint64,
	reason string,
) error {
	if d.revokeErr != nil {
		return d.revokeErr
	}
	d.revocations = append(d.revocations, revocation{
		communityId: communityId,
		memberId:    memberId,
		roleId:      roleId,
		reason:      reason,
	})
	return nil
}

type mockAudit struct {
	moderator uint64
	err       error
}

func (a *mockAudit) RoleModerator(
	ctx context.Context,
	communityId uint64,
	memberId uint64,
	roleId uint64,
	within time.Duration,
) (uint64, error) {
	return a.moderator, a.err
}

type dmRecorder struct {
	dms []platform.Message
}

func (m *dmRecorder) ResolveChannel(
	ctx context.Context,
	communityId uint64,
	channelId uint64,
) (*platform.Channel, error) {
	return nil, nil
}

func (m *dmRecorder) Channels(
	ctx context.Context,
	communityId uint64,
) ([]platform.Channel, error) {
	return nil, nil
}

func (m *dmRecorder) PostMessage(
	ctx context.Context,
	channelId uint64,
	msg platform.Message,
) error {
	return nil
}

func (m *dmRecorder) SendDirectMessage(
	ctx context.Context,
	memberId uint64,
	msg platform.Message,
) error {
	m.dms = append(m.dms, msg)
	return nil
}

func testRegistry(t *testing.T) *roles.Registry {
	t.Helper()
	registry, err := roles.NewRegistry(
		[]roles.AuthorityRole{
			{ID: guardianRoleId, Name: "Guardian"},
		},
		[]roles.TierRole{
			{ID: upperDemonRoleId, Name: "Upper Demon", MinPoints: 200},
		},
		999,
	)
	require.NoError(t, err)
	return registry
}

func newTestEnforcer(
	t *testing.T,
	directory *mockDirectory,
	audit *mockAudit,
) (*Enforcer, *dmRecorder, *database.Database) {
	t.Helper()
	db, err := database.New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck
		db.Close()
	})
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	messenger := &dmRecorder{}
	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{
		Messenger: messenger,
	})
	e, err := New(EnforcerConfig{
		EventBus:   bus,
		Database:   db,
		Dispatcher: dispatcher,
		Registry:   testRegistry(t),
		Directory:  directory,
		Audit:      audit,
	})
	require.NoError(t, err)
	return e, messenger, db
}

func guardian() platform.Role {
	return platform.Role{ID: guardianRoleId, Name: "Guardian", Position: 50}
}

func upperDemon() platform.Role {
	return platform.Role{ID: upperDemonRoleId, Name: "Upper Demon", Position: 20}
}

func rolesChanged(
	e *Enforcer,
	communityId uint64,
	memberId uint64,
	before []platform.Role,
	after []platform.Role,
) {
	e.handleRolesChanged(event.NewEvent(
		platform.MemberRolesChangedEventType,
		platform.MemberRolesChangedEvent{
			Member: platform.MemberSnapshot{
				Username:    "wanderer",
				CommunityID: communityId,
				MemberID:    memberId,
				Roles:       after,
			},
			Before: before,
		},
	))
}

func holderIds(assignments []models.RoleAssignment) []uint64 {
	ret := make([]uint64, 0, len(assignments))
	for _, assignment := range assignments {
		ret = append(ret, assignment.HolderID)
	}
	return ret
}

func TestGrantTracksAndLogs(t *testing.T) {
	communityId := uint64(700)
	directory := &mockDirectory{holders: []uint64{7}}
	e, _, db := newTestEnforcer(t, directory, &mockAudit{moderator: 42})

	rolesChanged(e, communityId, 7, nil, []platform.Role{guardian()})

	assignments, err := db.Assignments(communityId, guardianRoleId)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, uint64(7), assignments[0].HolderID)

	latest, err := db.LatestActivity(communityId, 7, guardianRoleId)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, models.ActivityActionAdded, latest.Action)
	assert.Equal(t, models.ActivityReasonManual, latest.Reason)
	assert.Equal(t, uint64(42), latest.ModeratorID)
}

func TestGrantUnattributedOnAuditFailure(t *testing.T) {
	communityId := uint64(701)
	directory := &mockDirectory{holders: []uint64{7}}
	e, _, db := newTestEnforcer(
		t,
		directory,
		&mockAudit{err: errors.New("audit log unavailable")},
	)

	rolesChanged(e, communityId, 7, nil, []platform.Role{guardian()})

	latest, err := db.LatestActivity(communityId, 7, guardianRoleId)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, uint64(0), latest.ModeratorID)
}

func TestTierRolesNotTracked(t *testing.T) {
	communityId := uint64(702)
	directory := &mockDirectory{holders: []uint64{7}}
	e, _, db := newTestEnforcer(t, directory, &mockAudit{})

	rolesChanged(e, communityId, 7, nil, []platform.Role{upperDemon()})

	assignments, err := db.Assignments(communityId, upperDemonRoleId)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestEvictsNewestExcludingJustAssigned(t *testing.T) {
	communityId := uint64(703)
	base := time.Now().Add(-time.Hour)
	directory := &mockDirectory{holders: []uint64{1, 2, 3}}
	e, messenger, db := newTestEnforcer(t, directory, &mockAudit{})

	require.NoError(t, db.SetRoleLimit(communityId, guardianRoleId, 2))
	require.NoError(
		t, db.TrackAssignment(communityId, 1, guardianRoleId, base),
	)
	require.NoError(
		t,
		db.TrackAssignment(
			communityId, 2, guardianRoleId, base.Add(time.Minute),
		),
	)

	// Member 3 takes the role over its limit of two. Member 2 is the
	// newest holder other than the grant that triggered enforcement.
	rolesChanged(e, communityId, 3, nil, []platform.Role{guardian()})

	require.Len(t, directory.revocations, 1)
	assert.Equal(t, uint64(2), directory.revocations[0].memberId)
	assert.Equal(t, RevokeReason, directory.revocations[0].reason)

	assignments, err := db.Assignments(communityId, guardianRoleId)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, holderIds(assignments))

	latest, err := db.LatestActivity(communityId, 2, guardianRoleId)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, models.ActivityActionRemoved, latest.Action)
	assert.Equal(t, models.ActivityReasonLimitExceeded, latest.Reason)

	require.Len(t, messenger.dms, 1)
	assert.Equal(t, "High Rank Role Removed", messenger.dms[0].Title)
	assert.Contains(t, messenger.dms[0].Body, "Guardian")
}

func TestNoLimitNoEviction(t *testing.T) {
	communityId := uint64(704)
	base := time.Now().Add(-time.Hour)
	directory := &mockDirectory{holders: []uint64{1, 2, 3}}
	e, _, db := newTestEnforcer(t, directory, &mockAudit{})

	require.NoError(
		t, db.TrackAssignment(communityId, 1, guardianRoleId, base),
	)
	require.NoError(
		t,
		db.TrackAssignment(
			communityId, 2, guardianRoleId, base.Add(time.Minute),
		),
	)

	rolesChanged(e, communityId, 3, nil, []platform.Role{guardian()})

	assert.Empty(t, directory.revocations)
	assignments, err := db.Assignments(communityId, guardianRoleId)
	require.NoError(t, err)
	assert.Len(t, assignments, 3)
}

func TestUnderLimitNoEviction(t *testing.T) {
	communityId := uint64(705)
	directory := &mockDirectory{holders: []uint64{1, 3}}
	e, _, db := newTestEnforcer(t, directory, &mockAudit{})

	require.NoError(t, db.SetRoleLimit(communityId, guardianRoleId, 5))
	require.NoError(
		t,
		db.TrackAssignment(
			communityId, 1, guardianRoleId, time.Now().Add(-time.Hour),
		),
	)

	rolesChanged(e, communityId, 3, nil, []platform.Role{guardian()})

	assert.Empty(t, directory.revocations)
}

func TestRevokeFailureKeepsAssignment(t *testing.T) {
	communityId := uint64(706)
	directory := &mockDirectory{
		holders:   []uint64{2, 3},
		revokeErr: errors.New("missing permissions"),
	}
	e, messenger, db := newTestEnforcer(t, directory, &mockAudit{})

	require.NoError(t, db.SetRoleLimit(communityId, guardianRoleId, 1))
	require.NoError(
		t,
		db.TrackAssignment(
			communityId, 2, guardianRoleId, time.Now().Add(-time.Hour),
		),
	)

	rolesChanged(e, communityId, 3, nil, []platform.Role{guardian()})

	// The revocation never landed, so the assignment log keeps both
	// holders and no eviction entry or DM is produced
	assignments, err := db.Assignments(communityId, guardianRoleId)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, holderIds(assignments))

	latest, err := db.LatestActivity(communityId, 2, guardianRoleId)
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.Empty(t, messenger.dms)
}

func TestOverLimitWithoutCandidate(t *testing.T) {
	communityId := uint64(707)
	// Holder 9 predates tracking, so the assignment log only knows about
	// the grant that triggered enforcement
	directory := &mockDirectory{holders: []uint64{9, 3}}
	e, _, db := newTestEnforcer(t, directory, &mockAudit{})

	require.NoError(t, db.SetRoleLimit(communityId, guardianRoleId, 1))

	rolesChanged(e, communityId, 3, nil, []platform.Role{guardian()})

	assert.Empty(t, directory.revocations)
	assignments, err := db.Assignments(communityId, guardianRoleId)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, holderIds(assignments))
}

func TestManualRemovalLogged(t *testing.T) {
	communityId := uint64(708)
	directory := &mockDirectory{}
	e, _, db := newTestEnforcer(t, directory, &mockAudit{})

	require.NoError(
		t,
		db.TrackAssignment(
			communityId, 7, guardianRoleId, time.Now().Add(-time.Hour),
		),
	)

	rolesChanged(e, communityId, 7, []platform.Role{guardian()}, nil)

	assignments, err := db.Assignments(communityId, guardianRoleId)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	latest, err := db.LatestActivity(communityId, 7, guardianRoleId)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, models.ActivityActionRemoved, latest.Action)
	assert.Equal(t, models.ActivityReasonManual, latest.Reason)
}

func TestRemovalAfterEvictionNotDoubleLogged(t *testing.T) {
	communityId := uint64(709)
	directory := &mockDirectory{}
	e, _, db := newTestEnforcer(t, directory, &mockAudit{})

	// Enforcement already recorded this removal; the role-removed event
	// that follows the revocation must not add a second entry
	require.NoError(t, db.AddActivity(&models.HRActivity{
		CommunityID: communityId,
		HolderID:    7,
		RoleID:      guardianRoleId,
		Action:      models.ActivityActionRemoved,
		Reason:      models.ActivityReasonLimitExceeded,
		Timestamp:   time.Now(),
	}))

	rolesChanged(e, communityId, 7, []platform.Role{guardian()}, nil)

	entries, err := db.RecentActivity(communityId, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityReasonLimitExceeded, entries[0].Reason)
}

func TestStaleEvictionEntryDoesNotSuppress(t *testing.T) {
	communityId := uint64(710)
	directory := &mockDirectory{}
	e, _, db := newTestEnforcer(t, directory, &mockAudit{})

	// An eviction from a previous tenure is too old to explain this event
	require.NoError(t, db.AddActivity(&models.HRActivity{
		CommunityID: communityId,
		HolderID:    7,
		RoleID:      guardianRoleId,
		Action:      models.ActivityActionRemoved,
		Reason:      models.ActivityReasonLimitExceeded,
		Timestamp:   time.Now().Add(-time.Hour),
	}))

	rolesChanged(e, communityId, 7, []platform.Role{guardian()}, nil)

	entries, err := db.RecentActivity(communityId, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActivityReasonManual, entries[0].Reason)
}
