package models

import "time"

// Progress is a point-in-time view of a running campaign.
type Progress struct {
	State            string              `json:"state"`
	CurrentIdentity  string              `json:"current_identity,omitempty"`
	SessionProcessed int                 `json:"session_processed"`
	Sessions         int                 `json:"sessions"`
	LoginFailures    int                 `json:"login_failures"`
	Processed        int                 `json:"processed"`
	TotalDomains     int                 `json:"total_domains"`
	CredentialsLeft  int                 `json:"credentials_left"`
	Outcomes         map[OutcomeKind]int `json:"outcomes"`
	LastDomain       string              `json:"last_domain,omitempty"`
	StartedAt        time.Time           `json:"started_at"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// CampaignResponse is the response for GET /api/v1/campaign.
type CampaignResponse struct {
	Success  bool         `json:"success"`
	Progress *Progress    `json:"progress,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}
