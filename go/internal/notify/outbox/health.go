package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HealthStatus struct {
	Healthy           bool      `json:"healthy"`
	Published         uint64    `json:"published"`
	LastSent          time.Time `json:"last_sent"`
	Unsent            int64     `json:"unsent"`
	DatabaseConnected bool      `json:"database_connected"`
	BrokerConnected   bool      `json:"broker_connected"`
	ListenerActive    bool      `json:"listener_active"`
	Errors            []string  `json:"errors"`
}

// BrokerCheck reports whether the publisher can reach its broker.
type BrokerCheck func(ctx context.Context) error

type HealthChecker struct {
	relay     *Relay
	listener  *Listener
	db        *sql.DB
	store     Store
	broker    BrokerCheck
	metrics   *Metrics
	threshold time.Duration
}

// NewHealthChecker builds the /health handler. broker may be nil.
func NewHealthChecker(relay *Relay, listener *Listener, db *sql.DB, store Store, broker BrokerCheck, m *Metrics, threshold time.Duration) *HealthChecker {
	return &HealthChecker{
		relay:     relay,
		listener:  listener,
		db:        db,
		store:     store,
		broker:    broker,
		metrics:   m,
		threshold: threshold,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, BrokerConnected: true, Errors: []string{}}
	status.Published, status.LastSent = h.relay.Stats()

	if err := h.db.PingContext(ctx); err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.broker != nil {
		if err := h.broker(ctx); err != nil {
			status.BrokerConnected = false
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("broker unreachable: %v", err))
		}
	}

	status.ListenerActive = h.listener != nil && h.listener.Active()
	if !status.ListenerActive {
		status.Healthy = false
		status.Errors = append(status.Errors, "listener not active")
	}

	if status.DatabaseConnected {
		unsent, err := h.store.CountUnsent(ctx)
		if err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("count unsent: %v", err))
		} else {
			status.Unsent = unsent
			h.metrics.recordLag(unsent)
		}
	}

	if status.Unsent > 0 && !status.LastSent.IsZero() {
		if since := time.Since(status.LastSent); since > h.threshold {
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("nothing published for %s", since.Round(time.Second)))
		}
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
