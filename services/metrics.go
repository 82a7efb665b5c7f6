package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelationToggles counts toggles by relation kind and resulting state.
	RelationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luntan_relation_toggles_total",
		Help: "Total number of follow/like/collect toggles",
	}, []string{"kind", "result"})

	// PostViews counts single-post fetches that incremented a view counter.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "luntan_post_views_total",
		Help: "Total number of post views recorded",
	})

	// LoginAttempts counts authentication attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luntan_login_attempts_total",
		Help: "Total login attempts by outcome",
	}, []string{"outcome"})
)
