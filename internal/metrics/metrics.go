// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/splitledger/internal/common"
)

const namespace = "splitledger"

// Balance view labels.
const (
	ViewGroup = "group"
	ViewUser  = "user"
)

// Recorder owns the collectors. A nil *Recorder records nothing, so callers
// can run without metrics.
type Recorder struct {
	expensesCreated *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	balanceDuration *prometheus.HistogramVec
	rpcs            *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		expensesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_created_total",
			Help:      "Expenses recorded, by split type.",
		}, []string{"split_type"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expense_rejections_total",
			Help:      "Expense creations rejected before anything was written, by reason.",
		}, []string{"reason"}),
		balanceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_computation_seconds",
			Help:      "Time spent replaying expense history into balances.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		rpcs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs served, by procedure and code.",
		}, []string{"procedure", "code"}),
		rpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
}

// ExpenseCreated counts a recorded expense.
func (r *Recorder) ExpenseCreated(splitType string) {
	if r == nil {
		return
	}
	r.expensesCreated.WithLabelValues(splitType).Inc()
}

// ExpenseRejected counts a failed expense creation under the reason derived from err.
func (r *Recorder) ExpenseRejected(err error) {
	if r == nil {
		return
	}
	r.rejections.WithLabelValues(Reason(err)).Inc()
}

// BalanceComputed observes how long a balance view took to build.
func (r *Recorder) BalanceComputed(view string, d time.Duration) {
	if r == nil {
		return
	}
	r.balanceDuration.WithLabelValues(view).Observe(d.Seconds())
}

// RPCHandled counts a finished RPC.
func (r *Recorder) RPCHandled(procedure, code string, d time.Duration) {
	if r == nil {
		return
	}
	r.rpcs.WithLabelValues(procedure, code).Inc()
	r.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

// Reason maps an error to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidSplit):
		return "invalid_split"
	case errors.Is(err, common.ErrUserNotMember):
		return "user_not_member"
	case errors.Is(err, common.ErrGroupNotFound):
		return "group_not_found"
	case errors.Is(err, common.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, common.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
