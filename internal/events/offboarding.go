package events

import "time"

const (
	SeparationTopic  = "hr.offboarding.separation.v1"
	SettlementTopic  = "hr.offboarding.settlement.v1"
	CertificateTopic = "hr.offboarding.certificate.v1"
)

const (
	SeparationStatusChanged  = "separation_status_changed"
	SettlementStatusChanged  = "settlement_status_changed"
	CertificateStatusChanged = "certificate_status_changed"
)

const (
	AggregateSeparation  = "separation"
	AggregateSettlement  = "settlement"
	AggregateCertificate = "certificate"
)

// StatusChangedEvent is published once per workflow transition. SeparationID is
// always set so consumers can correlate child records with their separation.
type StatusChangedEvent struct {
	EventType     string    `json:"event_type"`
	SeparationID  string    `json:"separation_id"`
	SettlementID  string    `json:"settlement_id,omitempty"`
	CertificateID string    `json:"certificate_id,omitempty"`
	EmployeeID    string    `json:"employee_id"`
	CompanyID     string    `json:"company_id"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Actor         string    `json:"actor"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	RequestID     string    `json:"request_id,omitempty"`
}
