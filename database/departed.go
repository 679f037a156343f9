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

package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/sectworks/warden/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepartedMember returns the departure record for a member, or nil when the
// member has never left the community.
func (d *Database) DepartedMember(
	communityId, memberId uint64,
) (*models.DepartedMember, error) {
	var ret models.DepartedMember
	result := d.db.Where(
		"community_id = ? AND member_id = ?",
		communityId,
		memberId,
	).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"DepartedMember: query: %w", result.Error,
		)
	}
	return &ret, nil
}

// SaveDeparture upserts a departure record. Each save overwrites the profile
// snapshot and resets the return cycle: ReturnedAt becomes whatever the given
// record carries, normally nil for a fresh departure.
func (d *Database) SaveDeparture(record *models.DepartedMember) error {
	result := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "member_id"},
			{Name: "community_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"username",
			"display_name",
			"avatar_url",
			"highest_role",
			"total_points",
			"join_date",
			"leave_date",
			"times_left",
			"had_trackable_role",
			"funeral_message",
			"returned_at",
		}),
	}).Create(record)
	if result.Error != nil {
		return fmt.Errorf(
			"SaveDeparture: upsert failed: %w",
			result.Error,
		)
	}
	return nil
}

// ClaimReturn marks a departure record as returned. It only succeeds once per
// departure cycle: the update is conditional on ReturnedAt being unset, so
// concurrent claims resolve to a single winner.
func (d *Database) ClaimReturn(
	communityId, memberId uint64,
	returnedAt time.Time,
) (bool, error) {
	result := d.db.Model(&models.DepartedMember{}).
		Where(
			"community_id = ? AND member_id = ? AND returned_at IS NULL",
			communityId,
			memberId,
		).
		Update("returned_at", returnedAt)
	if result.Error != nil {
		return false, fmt.Errorf(
			"ClaimReturn: update: %w", result.Error,
		)
	}
	return result.RowsAffected > 0, nil
}
