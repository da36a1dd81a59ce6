// Alert rule definitions and the default rule set.
package alerting

import "fmt"

// Severity classifies how urgent an alert is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Status is the lifecycle state of an alert.
type Status string

const (
	StatusFiring   Status = "FIRING"
	StatusResolved Status = "RESOLVED"
)

// Rule is an immutable threshold rule over a named metric. A rule fires
// while the metric's latest value is >= Threshold.
type Rule struct {
	Name        string   `yaml:"name"`
	MetricName  string   `yaml:"metric"`
	Threshold   float64  `yaml:"threshold"`
	Severity    Severity `yaml:"severity"`
	Description string   `yaml:"description"`
}

// ID keys the rule's alert in the active set; at most one alert exists per
// rule at any time.
func (r Rule) ID() string {
	return fmt.Sprintf("%s-%s", r.Name, r.MetricName)
}

// Validate checks the rule is usable.
func (r Rule) Validate() error {
	if r.Name == "" || r.MetricName == "" {
		return fmt.Errorf("rule needs a name and a metric name: %+v", r)
	}
	switch r.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return nil
	default:
		return fmt.Errorf("rule %q: unknown severity %q", r.Name, r.Severity)
	}
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "High CPU Usage", MetricName: "system_cpu_usage", Threshold: 80, Severity: SeverityHigh,
			Description: "CPU usage is above 80%"},
		{Name: "High Memory Usage", MetricName: "system_memory_usage", Threshold: 85, Severity: SeverityHigh,
			Description: "Memory usage is above 85%"},
		{Name: "Low Disk Space", MetricName: "system_disk_usage", Threshold: 90, Severity: SeverityCritical,
			Description: "Disk usage is above 90%"},
		{Name: "GPS Data Latency", MetricName: "gps_data_latency", Threshold: 2000, Severity: SeverityMedium,
			Description: "GPS data processing latency is above 2 seconds"},
		{Name: "High Error Rate", MetricName: "error_rate", Threshold: 5, Severity: SeverityHigh,
			Description: "Error rate is above 5%"},
		{Name: "Multiple Failed Logins", MetricName: "failed_logins_per_minute", Threshold: 10, Severity: SeverityCritical,
			Description: "More than 10 failed login attempts per minute"},
	}
}
