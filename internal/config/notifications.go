package config

import (
	"fmt"
	"strings"
	"time"
)

type Notifications struct {
	RabbitMQURL     string
	ShutdownTimeout time.Duration

	// Queues overrides the default queue set when non-empty.
	Queues []string
}

func LoadNotifications() (Notifications, error) {
	cfg := Notifications{
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		Queues:      splitList(getEnv("NOTIFICATIONS_QUEUES", "")),
	}

	var err error
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return Notifications{}, err
	}
	if cfg.RabbitMQURL == "" {
		return Notifications{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
