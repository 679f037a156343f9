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

package roles_test

import (
	"testing"

	"github.com/sectworks/warden/platform"
	"github.com/sectworks/warden/roles"
)

func testRegistry(t *testing.T) *roles.Registry {
	t.Helper()
	registry, err := roles.NewRegistry(
		[]roles.AuthorityRole{
			{ID: 101, Name: "Council"},
			{ID: 102, Name: "Commander"},
		},
		[]roles.TierRole{
			{ID: 201, Name: "Adept", MinPoints: 500},
			{ID: 202, Name: "Novice", MinPoints: 0},
		},
		301,
	)
	if err != nil {
		t.Fatalf("unexpected error building registry: %v", err)
	}
	return registry
}

func TestRegistryLookups(t *testing.T) {
	registry := testRegistry(t)
	if !registry.IsAuthority(101) {
		t.Error("expected 101 to be an authority role")
	}
	if registry.IsAuthority(201) {
		t.Error("tier role reported as authority")
	}
	if !registry.IsTier(201) {
		t.Error("expected 201 to be a tier role")
	}
	if !registry.IsRanked(102) || !registry.IsRanked(202) {
		t.Error("expected both sets to be ranked")
	}
	if registry.IsRanked(301) {
		t.Error("trackable role is not ranked")
	}
	if registry.TrackableRoleID() != 301 {
		t.Errorf(
			"unexpected trackable role id: %d",
			registry.TrackableRoleID(),
		)
	}
	tier, ok := registry.Tier(201)
	if !ok || tier.MinPoints != 500 {
		t.Errorf("unexpected tier lookup result: %+v ok=%v", tier, ok)
	}
	if got := registry.RankName(102); got != "Commander" {
		t.Errorf("unexpected rank name: %q", got)
	}
	if got := registry.RankName(999); got != "" {
		t.Errorf("expected empty rank name for unknown id, got %q", got)
	}
}

func TestRegistryValidation(t *testing.T) {
	testDefs := []struct {
		name      string
		authority []roles.AuthorityRole
		tiers     []roles.TierRole
	}{
		{
			name: "duplicate authority id",
			authority: []roles.AuthorityRole{
				{ID: 1, Name: "A"},
				{ID: 1, Name: "B"},
			},
		},
		{
			name: "duplicate tier id",
			tiers: []roles.TierRole{
				{ID: 2, Name: "A"},
				{ID: 2, Name: "B"},
			},
		},
		{
			name:      "id in both sets",
			authority: []roles.AuthorityRole{{ID: 3, Name: "A"}},
			tiers:     []roles.TierRole{{ID: 3, Name: "B"}},
		},
		{
			name:      "zero authority id",
			authority: []roles.AuthorityRole{{Name: "A"}},
		},
		{
			name:  "zero tier id",
			tiers: []roles.TierRole{{Name: "A"}},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := roles.NewRegistry(testDef.authority, testDef.tiers, 0)
			if err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegistryRoleSetHelpers(t *testing.T) {
	registry := testRegistry(t)
	memberRoles := []platform.Role{
		{ID: 999, Name: "Member", Position: 1},
		{ID: 201, Name: "Adept", Position: 5},
	}
	if registry.HasAuthorityRole(memberRoles) {
		t.Error("no authority role present, got true")
	}
	if registry.HoldsTrackable(memberRoles) {
		t.Error("trackable role not present, got true")
	}
	memberRoles = append(
		memberRoles,
		platform.Role{ID: 101, Name: "Council", Position: 10},
		platform.Role{ID: 301, Name: "Sect Disciple", Position: 2},
	)
	if !registry.HasAuthorityRole(memberRoles) {
		t.Error("authority role present, got false")
	}
	if !registry.HoldsTrackable(memberRoles) {
		t.Error("trackable role present, got false")
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry := roles.DefaultRegistry()
	if registry.TrackableRoleID() == 0 {
		t.Error("default registry has no trackable role")
	}
	// Spot-check one role from each table
	if got := registry.RankName(1266143259801948261); got != "Demon God" {
		t.Errorf("unexpected authority name: %q", got)
	}
	tier, ok := registry.Tier(1382602945752727613)
	if !ok || tier.MinPoints != 2000 {
		t.Errorf("unexpected top tier: %+v ok=%v", tier, ok)
	}
}
