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

package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type eventMetrics struct {
	eventsTotal    *prometheus.CounterVec
	eventsDropped  *prometheus.CounterVec
	deliveryErrors *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
}

func (e *EventBus) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	e.metrics = &eventMetrics{
		eventsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_eventbus_events_total",
				Help: "total events published per event type",
			},
			[]string{"type"},
		),
		eventsDropped: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_eventbus_events_dropped_total",
				Help: "async events dropped due to a full queue",
			},
			[]string{"type"},
		),
		deliveryErrors: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_eventbus_delivery_errors_total",
				Help: "subscriber delivery failures per event type",
			},
			[]string{"type"},
		),
		subscribers: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "warden_eventbus_subscribers",
				Help: "current subscriber count per event type",
			},
			[]string{"type"},
		),
	}
}
