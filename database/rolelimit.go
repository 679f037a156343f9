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

// InvalidLimitError is returned when a role limit would not allow a single
// holder. A role that should hold nobody has its limit removed instead.
type InvalidLimitError struct {
	MaxHolders int
}

func (e InvalidLimitError) Error() string {
	return fmt.Sprintf(
		"role limit must allow at least one holder, got %d",
		e.MaxHolders,
	)
}

// SetRoleLimit sets the maximum concurrent holder count for a role.
func (d *Database) SetRoleLimit(
	communityId, roleId uint64,
	maxHolders int,
) error {
	if maxHolders < 1 {
		return InvalidLimitError{MaxHolders: maxHolders}
	}
	tmpItem := models.RoleLimit{
		CommunityID: communityId,
		RoleID:      roleId,
		MaxHolders:  maxHolders,
	}
	result := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "community_id"},
			{Name: "role_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"max_holders",
		}),
	}).Create(&tmpItem)
	if result.Error != nil {
		return fmt.Errorf(
			"SetRoleLimit: upsert failed: %w",
			result.Error,
		)
	}
	return nil
}

// RoleLimit returns the configured limit for a role, or nil when the role
// is unlimited.
func (d *Database) RoleLimit(
	communityId, roleId uint64,
) (*models.RoleLimit, error) {
	var ret models.RoleLimit
	result := d.db.Where(
		"community_id = ? AND role_id = ?",
		communityId,
		roleId,
	).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"RoleLimit: query: %w", result.Error,
		)
	}
	return &ret, nil
}

// RemoveRoleLimit deletes the limit for a role, making it unlimited again.
func (d *Database) RemoveRoleLimit(communityId, roleId uint64) error {
	result := d.db.Where(
		"community_id = ? AND role_id = ?",
		communityId,
		roleId,
	).Delete(&models.RoleLimit{})
	if result.Error != nil {
		return fmt.Errorf(
			"RemoveRoleLimit: delete: %w",
			result.Error,
		)
	}
	return nil
}

// RoleLimits returns all configured limits for a community.
func (d *Database) RoleLimits(
	communityId uint64,
) ([]models.RoleLimit, error) {
	var ret []models.RoleLimit
	result := d.db.Where(
		"community_id = ?",
		communityId,
	).Order("role_id").Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf(
			"RoleLimits: query: %w", result.Error,
		)
	}
	return ret, nil
}
