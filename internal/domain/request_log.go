package domain

import "time"

// RequestLog is the append-only audit record written once per completed request.
type RequestLog struct {
	ID         string    `json:"id"          db:"id"`
	IP         string    `json:"ip"          db:"ip"`
	Method     string    `json:"method"      db:"method"`
	Path       string    `json:"path"        db:"path"`
	UserAgent  string    `json:"user_agent"  db:"user_agent"`
	Status     int       `json:"status"      db:"status"`
	IsThreat   bool      `json:"is_threat"   db:"is_threat"`
	DurationMS int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// RequestLogFilter narrows ListRequestLogs.
type RequestLogFilter struct {
	IP         string
	ThreatOnly bool
	Limit      int
}

// BlockedIP denies every request coming from IP.
type BlockedIP struct {
	IP        string    `json:"ip"         db:"ip"`
	Reason    string    `json:"reason"     db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
