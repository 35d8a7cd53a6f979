package storage

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// EmailLog is one row of the email_logs table.
type EmailLog struct {
	ID            uuid.UUID          `json:"id"`
	Recipient     string             `json:"recipient"`
	CorrelationID string             `json:"correlation_id"`
	CustomerName  string             `json:"customer_name"`
	Status        string             `json:"status"`
	MessageID     pgtype.Text        `json:"message_id"`
	Error         pgtype.Text        `json:"error"`
	Service       string             `json:"service"`
	EmailType     string             `json:"email_type"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}
