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

// SetChannelConfig upserts the per-community destination channels.
func (d *Database) SetChannelConfig(config *models.ChannelConfig) error {
	result := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "community_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"notification_channel",
			"retirement_channel",
			"funeral_channel",
			"reincarnation_channel",
		}),
	}).Create(config)
	if result.Error != nil {
		return fmt.Errorf(
			"SetChannelConfig: upsert failed: %w",
			result.Error,
		)
	}
	return nil
}

// ChannelConfig returns the destination channels for a community, or nil
// when none are configured.
func (d *Database) ChannelConfig(
	communityId uint64,
) (*models.ChannelConfig, error) {
	var ret models.ChannelConfig
	result := d.db.Where(
		"community_id = ?",
		communityId,
	).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"ChannelConfig: query: %w", result.Error,
		)
	}
	return &ret, nil
}
