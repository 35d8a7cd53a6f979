package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createEmailLog = `
INSERT INTO email_logs (
    recipient, correlation_id, customer_name, status, message_id, error, service, email_type, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
)
RETURNING id, recipient, correlation_id, customer_name, status, message_id, error, service, email_type, created_at
`

type CreateEmailLogParams struct {
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

func (q *Queries) CreateEmailLog(ctx context.Context, arg CreateEmailLogParams) (EmailLog, error) {
	row := q.db.QueryRow(ctx, createEmailLog,
		arg.Recipient,
		arg.CorrelationID,
		arg.CustomerName,
		arg.Status,
		arg.MessageID,
		arg.Error,
		arg.Service,
		arg.EmailType,
		arg.CreatedAt,
	)
	var i EmailLog
	err := row.Scan(
		&i.ID,
		&i.Recipient,
		&i.CorrelationID,
		&i.CustomerName,
		&i.Status,
		&i.MessageID,
		&i.Error,
		&i.Service,
		&i.EmailType,
		&i.CreatedAt,
	)
	return i, err
}

const listEmailLogs = `
SELECT id, recipient, correlation_id, customer_name, status, message_id, error, service, email_type, created_at
FROM email_logs
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

type ListEmailLogsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListEmailLogs(ctx context.Context, arg ListEmailLogsParams) ([]EmailLog, error) {
	rows, err := q.db.Query(ctx, listEmailLogs, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmailLogs(rows)
}

const listEmailLogsByCorrelationID = `
SELECT id, recipient, correlation_id, customer_name, status, message_id, error, service, email_type, created_at
FROM email_logs
WHERE correlation_id = $1
ORDER BY created_at DESC
LIMIT $2
`

type ListEmailLogsByCorrelationIDParams struct {
	CorrelationID string `json:"correlation_id"`
	Limit         int32  `json:"limit"`
}

func (q *Queries) ListEmailLogsByCorrelationID(ctx context.Context, arg ListEmailLogsByCorrelationIDParams) ([]EmailLog, error) {
	rows, err := q.db.Query(ctx, listEmailLogsByCorrelationID, arg.CorrelationID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmailLogs(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanEmailLogs(rows rowScanner) ([]EmailLog, error) {
	var items []EmailLog
	for rows.Next() {
		var i EmailLog
		if err := rows.Scan(
			&i.ID,
			&i.Recipient,
			&i.CorrelationID,
			&i.CustomerName,
			&i.Status,
			&i.MessageID,
			&i.Error,
			&i.Service,
			&i.EmailType,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
