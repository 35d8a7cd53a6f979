package api

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/annedfinds/storefront-notify/internal/dispatch"
	"github.com/annedfinds/storefront-notify/internal/domain"
	"github.com/annedfinds/storefront-notify/internal/logger"
	"github.com/annedfinds/storefront-notify/internal/msgstore"
	"github.com/annedfinds/storefront-notify/internal/storage"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

// emailLogResponse is the delivery log document returned to operators.
type emailLogResponse struct {
	ID            string `json:"id"`
	Recipient     string `json:"recipient"`
	CorrelationID string `json:"correlationId"`
	CustomerName  string `json:"customerName"`
	Status        string `json:"status"`
	MessageID     string `json:"messageId,omitempty"`
	Error         string `json:"error,omitempty"`
	Service       string `json:"service"`
	Timestamp     string `json:"timestamp"`
	EmailType     string `json:"emailType"`
}

type emailLogListResponse struct {
	Logs  []emailLogResponse `json:"logs"`
	Count int                `json:"count"`
}

// timestampToTime converts a pgtype.Timestamptz to time.Time.
// Returns zero time if the timestamp is not valid.
func timestampToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

// toDeliveryRecord maps a stored delivery log row onto the domain record.
func toDeliveryRecord(l storage.EmailLog) domain.DeliveryRecord {
	return domain.DeliveryRecord{
		ID:            l.ID.String(),
		Recipient:     l.Recipient,
		CorrelationID: l.CorrelationID,
		CustomerName:  l.CustomerName,
		Status:        domain.DeliveryStatus(l.Status),
		MessageID:     l.MessageID.String,
		Error:         l.Error.String,
		Service:       l.Service,
		Category:      domain.Category(l.EmailType),
		Timestamp:     timestampToTime(l.CreatedAt),
	}
}

func toEmailLogResponse(rec domain.DeliveryRecord) emailLogResponse {
	return emailLogResponse{
		ID:            rec.ID,
		Recipient:     rec.Recipient,
		CorrelationID: rec.CorrelationID,
		CustomerName:  rec.CustomerName,
		Status:        string(rec.Status),
		MessageID:     rec.MessageID,
		Error:         rec.Error,
		Service:       rec.Service,
		Timestamp:     rec.Timestamp.UTC().Format(time.RFC3339),
		EmailType:     string(rec.Category),
	}
}

// queryInt parses an optional non-negative integer query parameter that
// fits the int32 paging columns.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > math.MaxInt32 {
		return 0, dispatch.InvalidArgument("invalid " + name + " parameter")
	}
	return v, nil
}

// ListEmailLogsHandler handles GET /api/v1/email-logs. With ?orderId= it
// lists the records for one order; otherwise it pages through all records,
// newest first.
func ListEmailLogsHandler(queries storage.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", defaultLogLimit)
		if err != nil {
			respondDispatchError(w, r, err)
			return
		}
		if limit == 0 || limit > maxLogLimit {
			limit = maxLogLimit
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			respondDispatchError(w, r, err)
			return
		}

		var logs []storage.EmailLog
		if orderID := r.URL.Query().Get("orderId"); orderID != "" {
			logs, err = queries.ListEmailLogsByCorrelationID(r.Context(), storage.ListEmailLogsByCorrelationIDParams{
				CorrelationID: orderID,
				Limit:         int32(limit),
			})
		} else {
			logs, err = queries.ListEmailLogs(r.Context(), storage.ListEmailLogsParams{
				Limit:  int32(limit),
				Offset: int32(offset),
			})
		}
		if err != nil {
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Msg("failed to list email logs")
			respondError(w, http.StatusInternalServerError, dispatch.CodeInternal, "failed to list email logs")
			return
		}

		items := make([]emailLogResponse, 0, len(logs))
		for _, l := range logs {
			items = append(items, toEmailLogResponse(toDeliveryRecord(l)))
		}
		respondJSON(w, http.StatusOK, emailLogListResponse{Logs: items, Count: len(items)})
	}
}

// GetArchivedMessageHandler handles GET /api/v1/messages/{messageId} and
// returns the archived RFC 5322 message. A nil store answers 404.
func GetArchivedMessageHandler(store msgstore.MessageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "message archive is disabled")
			return
		}

		id, err := url.PathUnescape(chi.URLParam(r, "messageId"))
		if err != nil {
			respondError(w, http.StatusBadRequest, dispatch.CodeInvalidArgument, "invalid message id")
			return
		}
		data, err := store.Get(r.Context(), id)
		switch {
		case errors.Is(err, msgstore.ErrNotFound):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "message not found")
			return
		case errors.Is(err, msgstore.ErrInvalidID):
			respondError(w, http.StatusBadRequest, dispatch.CodeInvalidArgument, "invalid message id")
			return
		case err != nil:
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Str("message_id", id).Msg("failed to read archived message")
			respondError(w, http.StatusInternalServerError, dispatch.CodeInternal, "failed to read archived message")
			return
		}

		w.Header().Set("Content-Type", "message/rfc822")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
