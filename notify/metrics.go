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

package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type dispatcherMetrics struct {
	delivered      prometheus.Counter
	fallbacks      prometheus.Counter
	undeliverable  prometheus.Counter
	directMessages prometheus.Counter
}

func (d *Dispatcher) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	d.metrics = &dispatcherMetrics{
		delivered: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_notify_delivered_total",
				Help: "notices posted to a channel",
			},
		),
		fallbacks: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_notify_fallback_total",
				Help: "notices that resolved through the fallback cascade",
			},
		),
		undeliverable: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_notify_undeliverable_total",
				Help: "notices dropped with no postable channel or failed post",
			},
		),
		directMessages: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "warden_notify_direct_messages_total",
				Help: "direct messages delivered to members",
			},
		),
	}
}
