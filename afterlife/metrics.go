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

package afterlife

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type trackerMetrics struct {
	departures     prometheus.Counter
	funerals       prometheus.Counter
	deferred       prometheus.Counter
	reincarnations prometheus.Counter
}

func (t *Tracker) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	t.metrics = &trackerMetrics{
		departures: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_afterlife_departures_total",
			Help: "total member departures recorded",
		}),
		funerals: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_afterlife_funerals_total",
			Help: "total funeral notices announced",
		}),
		deferred: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_afterlife_deferred_total",
			Help: "total reincarnation notices deferred pending the trackable role",
		}),
		reincarnations: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_afterlife_reincarnations_total",
			Help: "total reincarnation notices announced",
		}),
	}
}
