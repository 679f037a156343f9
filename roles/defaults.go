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

package roles

// Role tables for the reference deployment. Deployments with their own
// role scheme load a registry file instead (see LoadFile).
var (
	defaultAuthorityRoles = []AuthorityRole{
		{ID: 1266143259801948261, Name: "Demon God"},
		{ID: 1281115906717650985, Name: "Heavenly Demon"},
		{ID: 1415022514534486136, Name: "Demon Sovereign"},
		{ID: 1304283446016868424, Name: "Supreme Demon"},
		{ID: 1276607675735736452, Name: "Guardian"},
		{ID: 1415242286929022986, Name: "Demon King"},
		{ID: 1266242655642456074, Name: "Demon Council"},
		{ID: 1400055033592287263, Name: "Demonic Commander"},
		{ID: 1390279781827874937, Name: "Young Master"},
	}

	defaultTierRoles = []TierRole{
		{ID: 1382602945752727613, Name: "Primordial Demon", MinPoints: 2000},
		{ID: 1391059979167072286, Name: "Divine Demon", MinPoints: 1500},
		{ID: 1391060071189971075, Name: "Ancient Demon", MinPoints: 1250},
		{ID: 1268528848740290580, Name: "Arch Demon", MinPoints: 750},
		{ID: 1308823860740624384, Name: "True Demon", MinPoints: 500},
		{ID: 1391059841505689680, Name: "Great Demon", MinPoints: 350},
		{ID: 1308823565881184348, Name: "Upper Demon", MinPoints: 200},
		{ID: 1266826177163694181, Name: "Lower Demon", MinPoints: 100},
		{ID: 1389474689818296370, Name: "Demon Apprentice", MinPoints: 0},
		{ID: 1266826663203700767, Name: "Demon Servant", MinPoints: 0},
	}

	defaultTrackableRoleID uint64 = 1268889388033642517
)

// DefaultRegistry returns the registry for the reference deployment.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		defaultAuthorityRoles,
		defaultTierRoles,
		defaultTrackableRoleID,
	)
	if err != nil {
		// Static tables above cannot fail validation
		panic(err)
	}
	return r
}
