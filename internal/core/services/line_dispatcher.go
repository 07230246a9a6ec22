package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"spsc-coopfund/internal/adapters/persistence/repositories"
)

const linePushURL = "https://api.line.me/v2/bot/message/push"

// LINEDispatcher pushes text messages to members who linked a LINE account.
// Members without a LINE user ID are skipped.
type LINEDispatcher struct {
	members  repositories.MemberRepository
	token    string
	endpoint string
	client   *http.Client
}

// NewLINEDispatcher creates a LINE Messaging API dispatcher
func NewLINEDispatcher(members repositories.MemberRepository, channelAccessToken string) *LINEDispatcher {
	return &LINEDispatcher{
		members:  members,
		token:    channelAccessToken,
		endpoint: linePushURL,
		client:   &http.Client{Timeout: dispatchTimeout},
	}
}

func (d *LINEDispatcher) Name() string { return "line" }

// SendSettlement pushes the settlement outcome
func (d *LINEDispatcher) SendSettlement(ctx context.Context, notice SettlementNotice) error {
	status := "approved"
	if notice.DateRejected != nil {
		status = "rejected"
	}
	msg := fmt.Sprintf("%s %s: your %s request %s for %s was %s.",
		notice.FirstName, notice.LastName, notice.Kind, notice.TransactionID, notice.Amount.StringFixed(2), status)
	return d.push(ctx, notice.MemberID, msg)
}

// SendDueReminder pushes a loan due-date reminder
func (d *LINEDispatcher) SendDueReminder(ctx context.Context, reminder DueReminder) error {
	msg := fmt.Sprintf("%s %s: your loan payment of %s (interest due %s) is due on %s.",
		reminder.FirstName, reminder.LastName, reminder.MonthlyPayment.StringFixed(2),
		reminder.InterestDue.StringFixed(2), reminder.DueDate.Format("2006-01-02"))
	return d.push(ctx, reminder.MemberID, msg)
}

func (d *LINEDispatcher) push(ctx context.Context, memberID, message string) error {
	member, err := d.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.LineUserID == "" {
		return nil
	}

	payload := map[string]interface{}{
		"to": member.LineUserID,
		"messages": []map[string]interface{}{
			{
				"type": "text",
				"text": message,
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("LINE push error: %s", string(body))
	}

	return nil
}
