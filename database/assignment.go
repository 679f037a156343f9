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

// TrackAssignment records a role grant, refreshing the assignment time when
// the holder already has a live row for the role.
func (d *Database) TrackAssignment(
	communityId, holderId, roleId uint64,
	assignedAt time.Time,
) error {
	tmpItem := models.RoleAssignment{
		CommunityID: communityId,
		HolderID:    holderId,
		RoleID:      roleId,
		AssignedAt:  assignedAt,
	}
	result := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "community_id"},
			{Name: "holder_id"},
			{Name: "role_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"assigned_at",
		}),
	}).Create(&tmpItem)
	if result.Error != nil {
		return fmt.Errorf(
			"TrackAssignment: upsert failed: %w",
			result.Error,
		)
	}
	return nil
}

// RemoveAssignment deletes the live assignment row for a holder and role.
// Removing an untracked assignment is not an error.
func (d *Database) RemoveAssignment(
	communityId, holderId, roleId uint64,
) error {
	result := d.db.Where(
		"community_id = ? AND holder_id = ? AND role_id = ?",
		communityId,
		holderId,
		roleId,
	).Delete(&models.RoleAssignment{})
	if result.Error != nil {
		return fmt.Errorf(
			"RemoveAssignment: delete: %w",
			result.Error,
		)
	}
	return nil
}

// NewestAssignmentExcluding returns the most recently assigned holder of a
// role, skipping the given holder, or nil when no other assignment exists.
// Ties on assignment time fall back to insertion order, newest first.
func (d *Database) NewestAssignmentExcluding(
	communityId, roleId, excludedHolderId uint64,
) (*models.RoleAssignment, error) {
	var ret models.RoleAssignment
	result := d.db.Where(
		"community_id = ? AND role_id = ? AND holder_id != ?",
		communityId,
		roleId,
		excludedHolderId,
	).Order("assigned_at DESC, id DESC").First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"NewestAssignmentExcluding: query: %w",
			result.Error,
		)
	}
	return &ret, nil
}

// Assignments returns the live assignment rows for a role, oldest first.
func (d *Database) Assignments(
	communityId, roleId uint64,
) ([]models.RoleAssignment, error) {
	var ret []models.RoleAssignment
	result := d.db.Where(
		"community_id = ? AND role_id = ?",
		communityId,
		roleId,
	).Order("assigned_at, id").Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf(
			"Assignments: query: %w", result.Error,
		)
	}
	return ret, nil
}
