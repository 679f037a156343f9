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

import (
	"github.com/sectworks/warden/platform"
)

// Diff computes the role transition between two snapshots of a member's
// role set. added preserves the order roles appear in after; removed
// preserves the order they appeared in before. Pure function, safe for
// concurrent use. Callers short-circuit when both results are empty.
func Diff(before, after []platform.Role) (added, removed []platform.Role) {
	beforeIDs := make(map[uint64]struct{}, len(before))
	for _, role := range before {
		beforeIDs[role.ID] = struct{}{}
	}
	afterIDs := make(map[uint64]struct{}, len(after))
	for _, role := range after {
		afterIDs[role.ID] = struct{}{}
	}
	for _, role := range after {
		if _, ok := beforeIDs[role.ID]; !ok {
			added = append(added, role)
		}
	}
	for _, role := range before {
		if _, ok := afterIDs[role.ID]; !ok {
			removed = append(removed, role)
		}
	}
	return added, removed
}
