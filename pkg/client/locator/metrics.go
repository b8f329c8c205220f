// Copyright 2026 The Accumulo Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package locator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tchaie/accumulo/pkg/data"
)

// Metrics holds the locator cache counters, labeled by table. A nil
// *Metrics disables collection.
type Metrics struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewMetrics builds the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accumulo",
			Subsystem: "locator",
			Name:      "cache_hits_total",
			Help:      "Tablet location lookups answered from the cache.",
		}, []string{"table"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accumulo",
			Subsystem: "locator",
			Name:      "cache_misses_total",
			Help:      "Tablet location lookups that required a metadata read.",
		}, []string{"table"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accumulo",
			Subsystem: "locator",
			Name:      "invalidations_total",
			Help:      "Cache invalidation requests.",
		}, []string{"table"}),
	}
	reg.MustRegister(m.cacheHits, m.cacheMisses, m.invalidations)
	return m
}

func (m *Metrics) hit(table data.TableID) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(string(table)).Inc()
}

func (m *Metrics) miss(table data.TableID) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(string(table)).Inc()
}

func (m *Metrics) invalidated(table data.TableID) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(string(table)).Inc()
}
