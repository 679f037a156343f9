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

package capacity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type enforcerMetrics struct {
	assignments prometheus.Counter
	removals    prometheus.Counter
	evictions   prometheus.Counter
	anomalies   prometheus.Counter
}

func (e *Enforcer) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	e.metrics = &enforcerMetrics{
		assignments: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_capacity_assignments_total",
			Help: "total authority role assignments tracked",
		}),
		removals: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_capacity_removals_total",
			Help: "total manual authority role removals logged",
		}),
		evictions: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_capacity_evictions_total",
			Help: "total holders evicted by limit enforcement",
		}),
		anomalies: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "warden_capacity_eviction_anomalies_total",
			Help: "times a role was over limit with no eviction candidate",
		}),
	}
}
