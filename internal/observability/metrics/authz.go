// Copyright 2026 The VenueCore Authors
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

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthzMetrics records authorization decision outcomes.
type AuthzMetrics struct {
	decisions metric.Int64Counter
}

// NewAuthzMetrics creates authorization decision counters on the meter.
func NewAuthzMetrics(m *Meter) (*AuthzMetrics, error) {
	decisions, err := m.CreateCounter(
		"authz_decisions_total",
		"Authorization decisions by permission and outcome",
	)
	if err != nil {
		return nil, err
	}
	return &AuthzMetrics{decisions: decisions}, nil
}

// RecordDecision counts one decision. The reason attribute is only
// attached on denials.
func (a *AuthzMetrics) RecordDecision(ctx context.Context, permission string, allowed bool, reason string) {
	attrs := []attribute.KeyValue{
		attribute.String("permission", permission),
		attribute.Bool("allowed", allowed),
	}
	if reason != "" {
		attrs = append(attrs, attribute.String("reason", reason))
	}
	a.decisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}
