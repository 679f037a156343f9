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

// Package roles classifies community roles for the rest of the engine.
// Authority roles confer rank by possession alone and are the set the
// capacity enforcer tracks; tier roles form a point-gated ladder; the
// trackable role gates departure and reincarnation notices. The registry is
// immutable after construction and safe for concurrent use.
package roles

import (
	"fmt"

	"github.com/sectworks/warden/platform"
)

// AuthorityRole is a role whose possession alone determines rank,
// independent of point totals.
type AuthorityRole struct {
	Name string
	ID   uint64
}

// TierRole is a point-gated role in the rank ladder. MinPoints is the
// total required before a grant counts as a promotion.
type TierRole struct {
	Name      string
	ID        uint64
	MinPoints int64
}

// Registry holds the configured role classification.
type Registry struct {
	authority       map[uint64]AuthorityRole
	tiers           map[uint64]TierRole
	trackableRoleID uint64
}

// NewRegistry builds a registry from explicit role tables. A role id may
// not appear in both tables.
func NewRegistry(
	authority []AuthorityRole,
	tiers []TierRole,
	trackableRoleID uint64,
) (*Registry, error) {
	r := &Registry{
		authority:       make(map[uint64]AuthorityRole, len(authority)),
		tiers:           make(map[uint64]TierRole, len(tiers)),
		trackableRoleID: trackableRoleID,
	}
	for _, role := range authority {
		if role.ID == 0 {
			return nil, fmt.Errorf("authority role %q has no id", role.Name)
		}
		if _, ok := r.authority[role.ID]; ok {
			return nil, fmt.Errorf("duplicate authority role id %d", role.ID)
		}
		r.authority[role.ID] = role
	}
	for _, role := range tiers {
		if role.ID == 0 {
			return nil, fmt.Errorf("tier role %q has no id", role.Name)
		}
		if _, ok := r.authority[role.ID]; ok {
			return nil, fmt.Errorf(
				"role id %d is both authority and tier",
				role.ID,
			)
		}
		if _, ok := r.tiers[role.ID]; ok {
			return nil, fmt.Errorf("duplicate tier role id %d", role.ID)
		}
		r.tiers[role.ID] = role
	}
	return r, nil
}

// Authority returns the authority role for an id.
func (r *Registry) Authority(id uint64) (AuthorityRole, bool) {
	role, ok := r.authority[id]
	return role, ok
}

// Tier returns the tier role for an id.
func (r *Registry) Tier(id uint64) (TierRole, bool) {
	role, ok := r.tiers[id]
	return role, ok
}

func (r *Registry) IsAuthority(id uint64) bool {
	_, ok := r.authority[id]
	return ok
}

func (r *Registry) IsTier(id uint64) bool {
	_, ok := r.tiers[id]
	return ok
}

// IsRanked reports whether the id is an authority or tier role.
func (r *Registry) IsRanked(id uint64) bool {
	return r.IsAuthority(id) || r.IsTier(id)
}

// TrackableRoleID is the role whose possession at departure time gates
// funeral and reincarnation notices.
func (r *Registry) TrackableRoleID() uint64 {
	return r.trackableRoleID
}

// RankName returns the display name for a ranked role id, or the empty
// string when the id is not ranked.
func (r *Registry) RankName(id uint64) string {
	if role, ok := r.authority[id]; ok {
		return role.Name
	}
	if role, ok := r.tiers[id]; ok {
		return role.Name
	}
	return ""
}

// HasAuthorityRole reports whether any of the given roles is an authority
// role.
func (r *Registry) HasAuthorityRole(memberRoles []platform.Role) bool {
	for _, role := range memberRoles {
		if r.IsAuthority(role.ID) {
			return true
		}
	}
	return false
}

// HoldsTrackable reports whether the given roles include the trackable role.
func (r *Registry) HoldsTrackable(memberRoles []platform.Role) bool {
	return platform.HasRole(memberRoles, r.trackableRoleID)
}
