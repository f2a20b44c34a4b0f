package models

// HealthReport is the payload of the backend health endpoint.
type HealthReport struct {
	Status string       `json:"status"`
	Time   string       `json:"time,omitempty"`
	Redis  *RedisHealth `json:"redis,omitempty"`
}

type RedisHealth struct {
	Connected bool    `json:"connected"`
	LatencyMS float64 `json:"latency_ms,omitempty"`
}
