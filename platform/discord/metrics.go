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

package discord

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type adapterMetrics struct {
	joins          prometheus.Counter
	leaves         prometheus.Counter
	roleChanges    prometheus.Counter
	skippedUpdates prometheus.Counter
}

func (a *Adapter) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	a.metrics = &adapterMetrics{
		joins: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_discord_member_joins_total",
			Help: "total member join events translated",
		}),
		leaves: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_discord_member_leaves_total",
			Help: "total member leave events translated",
		}),
		roleChanges: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_discord_role_changes_total",
			Help: "total member role change events translated",
		}),
		skippedUpdates: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_discord_skipped_updates_total",
			Help: "member updates skipped for missing previous state",
		}),
	}
}
