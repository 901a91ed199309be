package rpc

import "time"

type Config struct {
	GRPCAddr        string        `envconfig:"WRT_INFRA_GRPC_ADDR" default:"0.0.0.0:7070"`
	MetricsAddr     string        `envconfig:"WRT_METRICS_ADDR" default:"0.0.0.0:9092"`
	LogLevel        string        `envconfig:"WRT_LOG_LEVEL" default:"info"`
	Namespace       string        `envconfig:"WRT_NAMESPACE" required:"true"`
	ShutdownTimeout time.Duration `envconfig:"WRT_SHUTDOWN_TIMEOUT" default:"30s"`
}
