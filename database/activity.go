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
)

// AddActivity appends an entry to the HR activity log. The log is
// append-only; entries are never updated or deleted.
func (d *Database) AddActivity(entry *models.HRActivity) error {
	if result := d.db.Create(entry); result.Error != nil {
		return fmt.Errorf(
			"AddActivity: insert: %w", result.Error,
		)
	}
	return nil
}

// LatestActivity returns the most recent activity entry for a holder and
// role, or nil when none exists.
func (d *Database) LatestActivity(
	communityId, holderId, roleId uint64,
) (*models.HRActivity, error) {
	var ret models.HRActivity
	result := d.db.Where(
		"community_id = ? AND holder_id = ? AND role_id = ?",
		communityId,
		holderId,
		roleId,
	).Order("timestamp DESC, id DESC").First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"LatestActivity: query: %w", result.Error,
		)
	}
	return &ret, nil
}

// RecentActivity returns the newest activity entries for a community, most
// recent first, capped at limit.
func (d *Database) RecentActivity(
	communityId uint64,
	limit int,
) ([]models.HRActivity, error) {
	var ret []models.HRActivity
	result := d.db.Where(
		"community_id = ?",
		communityId,
	).Order("timestamp DESC, id DESC").Limit(limit).Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf(
			"RecentActivity: query: %w", result.Error,
		)
	}
	return ret, nil
}
