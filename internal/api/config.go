package api

import "time"

type Config struct {
	HTTPAddr        string        `envconfig:"WRT_HTTP_ADDR" default:"0.0.0.0:8090"`
	MetricsAddr     string        `envconfig:"WRT_METRICS_ADDR" default:"0.0.0.0:9090"`
	LogLevel        string        `envconfig:"WRT_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"WRT_SHUTDOWN_TIMEOUT" default:"30s"`

	WorkspaceID string        `envconfig:"WRT_WORKSPACE_ID" required:"true"`
	APIURL      string        `envconfig:"WRT_API_URL" required:"true"`
	EventsURL   string        `envconfig:"WRT_EVENTS_URL" required:"true"`
	APIToken    string        `envconfig:"WRT_API_TOKEN"`
	APIRate     float64       `envconfig:"WRT_API_RATE" default:"10"`
	APITimeout  time.Duration `envconfig:"WRT_API_TIMEOUT" default:"30s"`

	ProjectsRoot string `envconfig:"CHE_PROJECTS_ROOT" default:"/projects"`
	EventQueue   int    `envconfig:"WRT_EVENT_QUEUE" default:"64"`
}
