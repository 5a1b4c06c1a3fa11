package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ClassBookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_class_bookings_total",
			Help: "Class booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymhub_booking_cancellations_total",
			Help: "Total number of class booking cancellations",
		},
	)

	MembershipGrantsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_membership_grants_total",
			Help: "Membership periods granted, by resulting history status",
		},
		[]string{"status"},
	)

	TrainerAssignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymhub_trainer_assignments_total",
			Help: "Total number of personal trainer assignments created",
		},
	)

	TrainingSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_training_sessions_total",
			Help: "Training session status changes",
		},
		[]string{"status"},
	)

	PaymentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_payment_transitions_total",
			Help: "Applied payment status transitions",
		},
		[]string{"from", "to"},
	)

	PaymentNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_payment_notifications_total",
			Help: "Gateway notifications by outcome",
		},
		[]string{"outcome"},
	)

	GatewayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_gateway_errors_total",
			Help: "Payment gateway call failures",
		},
		[]string{"operation"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymhub_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	GymVisitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_gym_visits_total",
			Help: "Gym check-ins and check-outs",
		},
		[]string{"action"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymhub_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordClassBooking(outcome string) {
	ClassBookingsTotal.WithLabelValues(outcome).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordMembershipGrant(status string) {
	MembershipGrantsTotal.WithLabelValues(status).Inc()
}

func RecordTrainerAssignment() {
	TrainerAssignmentsTotal.Inc()
}

func RecordTrainingSession(status string) {
	TrainingSessionsTotal.WithLabelValues(status).Inc()
}

func RecordPaymentTransition(from, to string) {
	PaymentTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordPaymentNotification(outcome string) {
	PaymentNotificationsTotal.WithLabelValues(outcome).Inc()
}

func RecordGatewayError(operation string) {
	GatewayErrorsTotal.WithLabelValues(operation).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordGymVisit(action string) {
	GymVisitsTotal.WithLabelValues(action).Inc()
}

func RecordRateLimited(scope string) {
	RateLimitedTotal.WithLabelValues(scope).Inc()
}
