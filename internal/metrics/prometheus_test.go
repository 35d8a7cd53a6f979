package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func valueOf(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatal("metric is neither counter nor gauge")
	return 0
}

func TestMetricsRegistered(t *testing.T) {
	// promauto registers with the default registry at init, so a duplicate
	// name would already have panicked.
	tests := []struct {
		name   string
		metric prometheus.Collector
	}{
		{"NotificationsTotal", NotificationsTotal},
		{"NotificationDuration", NotificationDuration},
		{"AdminNotificationsTotal", AdminNotificationsTotal},
		{"DeliveryLogErrorsTotal", DeliveryLogErrorsTotal},
		{"ArchiveErrorsTotal", ArchiveErrorsTotal},
		{"TransportSendDuration", TransportSendDuration},
		{"TransportHealthy", TransportHealthy},
		{"APIRequestsTotal", APIRequestsTotal},
		{"APIRequestDuration", APIRequestDuration},
		{"APIAuthFailuresTotal", APIAuthFailuresTotal},
		{"ContactRateLimitedTotal", ContactRateLimitedTotal},
		{"DBConnectionsActive", DBConnectionsActive},
		{"DBConnectionsIdle", DBConnectionsIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s is nil", tt.name)
			}
		})
	}
}

func TestNotificationsCounter(t *testing.T) {
	c := NotificationsTotal.WithLabelValues("order_confirmation", "sent")
	before := valueOf(t, c)
	c.Inc()
	if got := valueOf(t, c); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}

func TestHistograms(t *testing.T) {
	NotificationDuration.WithLabelValues("contact_message").Observe(0.2)
	TransportSendDuration.WithLabelValues("smtp").Observe(1.5)
	APIRequestDuration.WithLabelValues("POST", "/sendOrderConfirmationEmail").Observe(0.05)
}

func TestTransportHealthyGauge(t *testing.T) {
	TransportHealthy.Set(1)
	if got := valueOf(t, TransportHealthy); got != 1 {
		t.Errorf("gauge = %v, want 1", got)
	}
	TransportHealthy.Set(0)
	if got := valueOf(t, TransportHealthy); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
}
