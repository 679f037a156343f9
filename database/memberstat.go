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

	"github.com/sectworks/warden/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberPoints returns a member's accumulated point total, or zero when the
// member has no stats row.
func (d *Database) MemberPoints(
	communityId, memberId uint64,
) (int64, error) {
	var ret models.MemberStat
	result := d.db.Where(
		"community_id = ? AND member_id = ?",
		communityId,
		memberId,
	).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf(
			"MemberPoints: query: %w", result.Error,
		)
	}
	return ret.TotalPoints, nil
}

// SetMemberPoints upserts a member's point total.
func (d *Database) SetMemberPoints(
	communityId, memberId uint64,
	totalPoints int64,
) error {
	tmpItem := models.MemberStat{
		CommunityID: communityId,
		MemberID:    memberId,
		TotalPoints: totalPoints,
	}
	result := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "community_id"},
			{Name: "member_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_points",
		}),
	}).Create(&tmpItem)
	if result.Error != nil {
		return fmt.Errorf(
			"SetMemberPoints: upsert failed: %w",
			result.Error,
		)
	}
	return nil
}
