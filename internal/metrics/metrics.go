package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActivationAttempts counts terminal activation outcomes by result
	// ("completed" or a failure kind).
	ActivationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlink_activation_attempts_total",
			Help: "Total number of account activation attempts reaching a terminal state",
		},
		[]string{"result"},
	)

	// DelegationsTotal counts per-chain wallet delegation calls by outcome
	DelegationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlink_wallet_delegations_total",
			Help: "Total number of wallet delegation calls",
		},
		[]string{"chain", "status"},
	)

	// SyncDuration tracks user create-or-sync call latency
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardlink_user_sync_duration_seconds",
			Help:    "User create-or-sync call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// UserSyncs counts server-side create-or-sync outcomes
	UserSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlink_user_syncs_total",
			Help: "Total number of user create-or-sync requests served",
		},
		[]string{"outcome"},
	)
)
