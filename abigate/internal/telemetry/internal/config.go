package internal

import "time"

const DefaultExportInterval = 10 * time.Second

// Config selects where abigate instruments are reported. Both sinks may be on at once.
type Config struct {
	ServiceName string `yaml:"serviceName,omitempty"`

	// ExportMetrics pushes to an OTLP collector every ExportInterval.
	ExportMetrics  bool          `yaml:"exportMetrics,omitempty"`
	GrpcEndpoint   string        `yaml:"grpcEndpoint,omitempty"`
	ExportInterval time.Duration `yaml:"exportInterval,omitempty"`

	// PrometheusPort serves /metrics when non-zero.
	PrometheusPort int `yaml:"prometheusPort,omitempty"`
}

func (c *Config) exportInterval() time.Duration {
	if c.ExportInterval <= 0 {
		return DefaultExportInterval
	}
	return c.ExportInterval
}
