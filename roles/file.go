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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type registryFile struct {
	Authority []struct {
		Name string `yaml:"name"`
		ID   uint64 `yaml:"id"`
	} `yaml:"authority"`
	Tiers []struct {
		Name      string `yaml:"name"`
		ID        uint64 `yaml:"id"`
		MinPoints int64  `yaml:"minPoints"`
	} `yaml:"tiers"`
	TrackableRole uint64 `yaml:"trackableRole"`
}

// LoadFile reads a registry definition from a YAML file.
func LoadFile(path string) (*Registry, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roles file: %w", err)
	}
	var rf registryFile
	if err := yaml.Unmarshal(buf, &rf); err != nil {
		return nil, fmt.Errorf("parsing roles file: %w", err)
	}
	authority := make([]AuthorityRole, 0, len(rf.Authority))
	for _, role := range rf.Authority {
		authority = append(
			authority,
			AuthorityRole{ID: role.ID, Name: role.Name},
		)
	}
	tiers := make([]TierRole, 0, len(rf.Tiers))
	for _, role := range rf.Tiers {
		tiers = append(
			tiers,
			TierRole{ID: role.ID, Name: role.Name, MinPoints: role.MinPoints},
		)
	}
	registry, err := NewRegistry(authority, tiers, rf.TrackableRole)
	if err != nil {
		return nil, fmt.Errorf("invalid roles file: %w", err)
	}
	return registry, nil
}
