package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	fragPoll = "frag_poll"

	passesTotal        = "passes_total"
	submissionsTotal   = "submissions_total"
	confirmedTotal     = "confirmed_total"
	notificationsTotal = "notifications_total"

	// Labels
	pollerLabel     = "poller"
	outcomeLabel    = "outcome"
	confidenceLabel = "confidence"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

/**
* Metrics definition
**/
var passesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: fragPoll,
		Name:      passesTotal,
		Help:      "number of polling passes by outcome",
	},
	[]string{pollerLabel, outcomeLabel},
)

var submissionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: fragPoll,
		Name:      submissionsTotal,
		Help:      "number of submissions stored in the grading database",
	},
	[]string{pollerLabel},
)

var confirmedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: fragPoll,
		Name:      confirmedTotal,
		Help:      "number of remote objects confirmed by confidence level",
	},
	[]string{pollerLabel, confidenceLabel},
)

var notificationsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: fragPoll,
		Name:      notificationsTotal,
		Help:      "number of extraneous file notifications by outcome",
	},
	[]string{pollerLabel, outcomeLabel},
)

func IncreasePassesMetric(poller, outcome string) {
	passesTotalMetric.With(prometheus.Labels{pollerLabel: poller, outcomeLabel: outcome}).Inc()
}

func IncreaseSubmissionsMetric(poller string) {
	submissionsTotalMetric.With(prometheus.Labels{pollerLabel: poller}).Inc()
}

func IncreaseConfirmedMetric(poller, confidence string, count int) {
	confirmedTotalMetric.With(prometheus.Labels{pollerLabel: poller, confidenceLabel: confidence}).Add(float64(count))
}

func IncreaseNotificationsMetric(poller, outcome string) {
	notificationsTotalMetric.With(prometheus.Labels{pollerLabel: poller, outcomeLabel: outcome}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(passesTotalMetric)
	prometheus.MustRegister(submissionsTotalMetric)
	prometheus.MustRegister(confirmedTotalMetric)
	prometheus.MustRegister(notificationsTotalMetric)
}
