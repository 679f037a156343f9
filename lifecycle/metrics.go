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

package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type managerMetrics struct {
	promotions           prometheus.Counter
	retirementsScheduled prometheus.Counter
	retirementsCancelled prometheus.Counter
	retirementsFired     prometheus.Counter
	pendingRetirements   prometheus.GaugeFunc
}

func (m *Manager) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.metrics = &managerMetrics{
		promotions: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_lifecycle_promotions_total",
				Help: "promotion notices announced",
			},
		),
		retirementsScheduled: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_lifecycle_retirements_scheduled_total",
				Help: "retirement checks entering the debounce window",
			},
		),
		retirementsCancelled: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_lifecycle_retirements_cancelled_total",
				Help: "pending retirements cancelled by a new ranked role",
			},
		),
		retirementsFired: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_lifecycle_retirements_fired_total",
				Help: "retirement notices announced after the delay",
			},
		),
		pendingRetirements: promautoFactory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "warden_lifecycle_pending_retirements",
				Help: "retirement checks currently waiting out the delay",
			},
			func() float64 {
				return float64(m.scheduler.PendingCount())
			},
		),
	}
}
