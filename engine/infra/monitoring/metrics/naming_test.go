package metrics

import "testing"

func TestMetricName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "adds prefix", input: "requests_total", expected: "roster_requests_total"},
		{name: "keeps prefixed", input: "roster_custom_metric", expected: "roster_custom_metric"},
		{name: "blank returns prefix", input: "", expected: "roster_"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MetricName(tt.input); got != tt.expected {
				t.Fatalf("MetricName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMetricNameWithSubsystem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		subsystem  string
		metricName string
		expected   string
	}{
		{
			name:       "subsystem and name",
			subsystem:  "http",
			metricName: "requests_total",
			expected:   "roster_http_requests_total",
		},
		{
			name:       "subsystem trims underscore",
			subsystem:  "_postgres_",
			metricName: "connections_open",
			expected:   "roster_postgres_connections_open",
		},
		{name: "empty name", subsystem: "postgres", metricName: "", expected: "roster_postgres"},
		{
			name:       "already prefixed",
			subsystem:  "",
			metricName: "roster_existing_metric",
			expected:   "roster_existing_metric",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MetricNameWithSubsystem(tt.subsystem, tt.metricName); got != tt.expected {
				t.Fatalf("MetricNameWithSubsystem(%q, %q) = %q, want %q", tt.subsystem, tt.metricName, got, tt.expected)
			}
		})
	}
}
