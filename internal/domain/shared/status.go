package shared

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// EventType identifies ledger events carried through the outbox and Kafka
type EventType string

const (
	EventTypeInvestmentRecorded EventType = "INVESTMENT_RECORDED"
)
