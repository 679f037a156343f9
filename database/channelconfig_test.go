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

	"github.com/sectworks/warden/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelConfig(t *testing.T) {
	db := newTestDatabase(t)
	community := uint64(600)

	config, err := db.ChannelConfig(community)
	require.NoError(t, err)
	assert.Nil(t, config)

	require.NoError(t, db.SetChannelConfig(&models.ChannelConfig{
		CommunityID:       community,
		RetirementChannel: 111,
		FuneralChannel:    222,
	}))

	config, err = db.ChannelConfig(community)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, uint64(111), config.RetirementChannel)
	assert.Equal(t, uint64(222), config.FuneralChannel)
	assert.Zero(t, config.NotificationChannel)

	// Upsert replaces the row
	require.NoError(t, db.SetChannelConfig(&models.ChannelConfig{
		CommunityID:          community,
		RetirementChannel:    333,
		ReincarnationChannel: 444,
	}))
	config, err = db.ChannelConfig(community)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, uint64(333), config.RetirementChannel)
	assert.Equal(t, uint64(444), config.ReincarnationChannel)
	assert.Zero(t, config.FuneralChannel)
}

func TestMemberPoints(t *testing.T) {
	db := newTestDatabase(t)
	community := uint64(601)

	// Absent stats row reads as zero
	points, err := db.MemberPoints(community, 1)
	require.NoError(t, err)
	assert.Zero(t, points)

	require.NoError(t, db.SetMemberPoints(community, 1, 1500))
	points, err = db.MemberPoints(community, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), points)

	require.NoError(t, db.SetMemberPoints(community, 1, 1750))
	points, err = db.MemberPoints(community, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1750), points)
}
