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

// AddPendingReincarnation records that a member's reincarnation notice is
// deferred. Re-adding an existing marker refreshes the return date.
func (d *Database) AddPendingReincarnation(
	communityId, memberId uint64,
	returnDate time.Time,
) error {
	tmpItem := models.PendingReincarnation{
		MemberID:    memberId,
		CommunityID: communityId,
		ReturnDate:  returnDate,
	}
	result := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "member_id"},
			{Name: "community_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"return_date",
		}),
	}).Create(&tmpItem)
	if result.Error != nil {
		return fmt.Errorf(
			"AddPendingReincarnation: upsert failed: %w",
			result.Error,
		)
	}
	return nil
}

// ClaimPendingReincarnation consumes a deferred-notice marker. Returns true
// only for the caller that actually deleted the row, so a marker yields at
// most one notice even under duplicate events.
func (d *Database) ClaimPendingReincarnation(
	communityId, memberId uint64,
) (bool, error) {
	result := d.db.Where(
		"community_id = ? AND member_id = ?",
		communityId,
		memberId,
	).Delete(&models.PendingReincarnation{})
	if result.Error != nil {
		return false, fmt.Errorf(
			"ClaimPendingReincarnation: delete: %w",
			result.Error,
		)
	}
	return result.RowsAffected > 0, nil
}

// HasPendingReincarnation reports whether a deferred-notice marker exists.
func (d *Database) HasPendingReincarnation(
	communityId, memberId uint64,
) (bool, error) {
	var ret models.PendingReincarnation
	result := d.db.Where(
		"community_id = ? AND member_id = ?",
		communityId,
		memberId,
	).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf(
			"HasPendingReincarnation: query: %w",
			result.Error,
		)
	}
	return true, nil
}
