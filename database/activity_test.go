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

package database_test

import (
	"testing"
	"time"

	"github.com/sectworks/warden/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestActivity(t *testing.T) {
	db := newTestDatabase(t)
	community := uint64(400)
	holder := uint64(1)
	role := uint64(9001)
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// No entries yet
	latest, err := db.LatestActivity(community, holder, role)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, db.AddActivity(&models.HRActivity{
		CommunityID: community,
		HolderID:    holder,
		RoleID:      role,
		Action:      models.ActivityActionAdded,
		Reason:      models.ActivityReasonManual,
		ModeratorID: 42,
		Timestamp:   base,
	}))
	require.NoError(t, db.AddActivity(&models.HRActivity{
		CommunityID: community,
		HolderID:    holder,
		RoleID:      role,
		Action:      models.ActivityActionRemoved,
		Reason:      models.ActivityReasonLimitExceeded,
		Timestamp:   base.Add(time.Minute),
	}))

	latest, err = db.LatestActivity(community, holder, role)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, models.ActivityActionRemoved, latest.Action)
	assert.Equal(t, models.ActivityReasonLimitExceeded, latest.Reason)
}

func TestRecentActivity(t *testing.T) {
	db := newTestDatabase(t)
	community := uint64(401)
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	for i := range 5 {
		require.NoError(t, db.AddActivity(&models.HRActivity{
			CommunityID: community,
			HolderID:    uint64(i + 1),
			RoleID:      9001,
			Action:      models.ActivityActionAdded,
			Reason:      models.ActivityReasonManual,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := db.RecentActivity(community, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Most recent first
	assert.Equal(t, uint64(5), entries[0].HolderID)
	assert.Equal(t, uint64(4), entries[1].HolderID)
	assert.Equal(t, uint64(3), entries[2].HolderID)
}
