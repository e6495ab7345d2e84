package amqp

import (
	"encoding/json"
	"time"
)

// Refresh reasons carried on RefreshMessage.
const (
	ReasonPeriodPaid  = "period_paid"
	ReasonTransaction = "transaction_changed"
	ReasonScheduled   = "scheduled"
)

// RefreshMessage tells consumers that the cached views for a tenant are
// stale and should be rebuilt from the backend.
type RefreshMessage struct {
	TenantID  int64     `json:"tenantId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRefreshMessage creates a refresh message for a tenant
func NewRefreshMessage(tenantID int64, reason string) *RefreshMessage {
	return &RefreshMessage{
		TenantID:  tenantID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON creates a message from JSON bytes
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
