package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"spsc-coopfund/internal/core/domain"

	"go.uber.org/zap"
)

// dispatchTimeout bounds one delivery attempt
const dispatchTimeout = 10 * time.Second

// NotificationService fans settlement results out to dispatchers without
// blocking the caller. Delivery failures are logged and never retried.
type NotificationService struct {
	dispatchers []Dispatcher
	logger      *zap.Logger
	wg          sync.WaitGroup
}

// NewNotificationService creates a new notification service
func NewNotificationService(logger *zap.Logger, dispatchers ...Dispatcher) *NotificationService {
	return &NotificationService{
		dispatchers: dispatchers,
		logger:      logger,
	}
}

// NotifySettlement sends the notice to every dispatcher in the background
func (s *NotificationService) NotifySettlement(notice SettlementNotice) {
	for _, d := range s.dispatchers {
		d := d
		s.dispatch(d, "settlement", notice.MemberID, notice.TransactionID, func(ctx context.Context) error {
			return d.SendSettlement(ctx, notice)
		})
	}
}

// NotifyDue sends a due reminder to every dispatcher in the background
func (s *NotificationService) NotifyDue(reminder DueReminder) {
	for _, d := range s.dispatchers {
		d := d
		s.dispatch(d, "due_reminder", reminder.MemberID, reminder.TransactionID, func(ctx context.Context) error {
			return d.SendDueReminder(ctx, reminder)
		})
	}
}

func (s *NotificationService) dispatch(d Dispatcher, event, memberID, transactionID string, send func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.logger.Warn("notification dispatch failed",
				zap.String("dispatcher", d.Name()),
				zap.String("event", event),
				zap.String("member_id", memberID),
				zap.String("transaction_id", transactionID),
				zap.Error(fmt.Errorf("%w: %w", domain.ErrNotification, err)),
			)
		}
	}()
}

// Wait blocks until every in-flight dispatch has finished
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// ============================================================
// Webhook dispatcher
// ============================================================

// WebhookDispatcher posts JSON payloads to the email/push gateway
type WebhookDispatcher struct {
	url    string
	token  string
	client *http.Client
}

// NewWebhookDispatcher creates a dispatcher posting to url.
// token is sent as a bearer token when set.
func NewWebhookDispatcher(url, token string) *WebhookDispatcher {
	return &WebhookDispatcher{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: dispatchTimeout},
	}
}

func (d *WebhookDispatcher) Name() string { return "webhook" }

type webhookEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// SendSettlement posts a settlement notice
func (d *WebhookDispatcher) SendSettlement(ctx context.Context, notice SettlementNotice) error {
	return d.post(ctx, webhookEnvelope{Event: "settlement", Data: notice})
}

// SendDueReminder posts a due reminder
func (d *WebhookDispatcher) SendDueReminder(ctx context.Context, reminder DueReminder) error {
	return d.post(ctx, webhookEnvelope{Event: "due_reminder", Data: reminder})
}

func (d *WebhookDispatcher) post(ctx context.Context, payload webhookEnvelope) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// ============================================================
// Log dispatcher
// ============================================================

// LogDispatcher writes notifications to the log; used when no gateway is configured
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Name() string { return "log" }

// SendSettlement logs a settlement notice
func (d *LogDispatcher) SendSettlement(_ context.Context, notice SettlementNotice) error {
	d.logger.Info("settlement notice",
		zap.String("kind", string(notice.Kind)),
		zap.String("member_id", notice.MemberID),
		zap.String("transaction_id", notice.TransactionID),
		zap.String("amount", notice.Amount.StringFixed(2)),
		zap.Bool("approved", notice.DateApproved != nil),
	)
	return nil
}

// SendDueReminder logs a due reminder
func (d *LogDispatcher) SendDueReminder(_ context.Context, reminder DueReminder) error {
	d.logger.Info("due reminder",
		zap.String("member_id", reminder.MemberID),
		zap.String("transaction_id", reminder.TransactionID),
		zap.String("monthly_payment", reminder.MonthlyPayment.StringFixed(2)),
		zap.Time("due_date", reminder.DueDate),
	)
	return nil
}
