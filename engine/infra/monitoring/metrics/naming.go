package metrics

import "strings"

const namePrefix = "roster_"

// MetricName prefixes the metric with the project namespace unless the
// prefix is already present.
func MetricName(name string) string {
	if strings.HasPrefix(name, namePrefix) {
		return name
	}
	return namePrefix + name
}

// MetricNameWithSubsystem builds "<prefix><subsystem>_<name>", trimming
// stray underscores from the subsystem component.
func MetricNameWithSubsystem(subsystem, name string) string {
	if strings.HasPrefix(name, namePrefix) {
		return name
	}
	sub := strings.Trim(subsystem, "_")
	if sub == "" {
		return MetricName(name)
	}
	if name == "" {
		return namePrefix + sub
	}
	return namePrefix + sub + "_" + name
}
