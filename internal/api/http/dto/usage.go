package dto

import "github.com/nati-dev/nati-console/internal/usage"

type UsageResponse struct {
	usage.Summary
	Preset string `json:"preset,omitempty"`
	Stale  bool   `json:"stale"`
}
