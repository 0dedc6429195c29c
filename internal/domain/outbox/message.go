package outbox

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
)

// Message is a recorded-investment event written in the same transaction as the investment
type Message struct {
	ID            int64               `json:"id"`
	InvestmentID  uuid.UUID           `json:"investment_id"`
	ProjectID     int64               `json:"project_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a ledger entry as a pending message stamped with the entry's recording time
func NewMessage(entry *ledger.Entry) (*Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	createdAt := entry.RecordedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &Message{
		InvestmentID: entry.InvestmentID,
		ProjectID:    entry.ProjectID,
		Payload:      payload,
		Status:       shared.OutboxStatusPending,
		CreatedAt:    createdAt,
	}, nil
}

// PartitionKey keeps every event of one project on the same partition, in commit order
func (m *Message) PartitionKey() string {
	return strconv.FormatInt(m.ProjectID, 10)
}

// RetriesExhausted reports whether the failure being handled now is the last one allowed
func (m *Message) RetriesExhausted(maxAttempts int) bool {
	return m.Attempts+1 >= maxAttempts
}

// LedgerEntry decodes the payload. A payload that names a different investment or project
// than the row it is stored in is rejected.
func (m *Message) LedgerEntry() (*ledger.Entry, error) {
	var entry ledger.Entry
	if err := json.Unmarshal(m.Payload, &entry); err != nil {
		return nil, err
	}
	if m.InvestmentID != uuid.Nil && entry.InvestmentID != m.InvestmentID {
		return nil, fmt.Errorf("payload investment %s does not match outbox investment %s", entry.InvestmentID, m.InvestmentID)
	}
	if m.ProjectID != 0 && entry.ProjectID != m.ProjectID {
		return nil, fmt.Errorf("payload project %d does not match outbox project %d", entry.ProjectID, m.ProjectID)
	}
	return &entry, nil
}
