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

package models

import "time"

// HR activity log actions
const (
	ActivityActionAdded   = "ADDED"
	ActivityActionRemoved = "REMOVED"
)

// HR activity log reasons
const (
	ActivityReasonManual        = "MANUAL"
	ActivityReasonLimitExceeded = "LIMIT_EXCEEDED"
)

// RoleLimit caps the number of concurrent holders of a tracked role within a
// community. A role without a row is unlimited.
type RoleLimit struct {
	ID          uint   `gorm:"primarykey"`
	CommunityID uint64 `gorm:"uniqueIndex:idx_role_limit_community_role"`
	RoleID      uint64 `gorm:"uniqueIndex:idx_role_limit_community_role"`
	MaxHolders  int
}

func (RoleLimit) TableName() string {
	return "role_limits"
}

// RoleAssignment records the most recent grant of a tracked role to a holder.
// At most one live row exists per (community, holder, role); re-grants refresh
// AssignedAt in place.
type RoleAssignment struct {
	ID          uint   `gorm:"primarykey"`
	CommunityID uint64 `gorm:"uniqueIndex:idx_role_assignment_holder_role"`
	HolderID    uint64 `gorm:"uniqueIndex:idx_role_assignment_holder_role"`
	RoleID      uint64 `gorm:"uniqueIndex:idx_role_assignment_holder_role;index"`
	AssignedAt  time.Time
}

func (RoleAssignment) TableName() string {
	return "role_assignments"
}

// HRActivity is an append-only audit entry for tracked role changes.
// ModeratorID is zero when attribution was unavailable.
type HRActivity struct {
	ID          uint   `gorm:"primarykey"`
	CommunityID uint64 `gorm:"index:idx_hr_activity_holder_role"`
	HolderID    uint64 `gorm:"index:idx_hr_activity_holder_role"`
	RoleID      uint64 `gorm:"index:idx_hr_activity_holder_role"`
	Action      string `gorm:"size:16"`
	Reason      string `gorm:"size:32"`
	ModeratorID uint64
	Timestamp   time.Time `gorm:"index"`
}

func (HRActivity) TableName() string {
	return "hr_activity_log"
}
