package storage

import (
	"context"
)

// Querier is the delivery log surface used by the dispatcher and the API.
type Querier interface {
	CreateEmailLog(ctx context.Context, arg CreateEmailLogParams) (EmailLog, error)
	ListEmailLogs(ctx context.Context, arg ListEmailLogsParams) ([]EmailLog, error)
	ListEmailLogsByCorrelationID(ctx context.Context, arg ListEmailLogsByCorrelationIDParams) ([]EmailLog, error)
}

var _ Querier = (*Queries)(nil)
