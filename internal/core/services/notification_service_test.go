package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spsc-coopfund/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettlementNotice_JSONKeys(t *testing.T) {
	approved := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	body, err := json.Marshal(SettlementNotice{
		MemberID:      "M-1",
		TransactionID: "T1",
		Amount:        dec("200"),
		DateApproved:  &approved,
		FirstName:     "Juan",
		LastName:      "Dela Cruz",
		Email:         "juan@coop.test",
		Kind:          domain.KindWithdrawal,
	})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.ElementsMatch(t,
		[]string{"memberId", "transactionId", "amount", "dateApproved", "firstName", "lastName", "email", "kind"},
		keys(got),
	)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestNotificationService_FansOutToEveryDispatcher(t *testing.T) {
	first, second := &mockDispatcher{}, &mockDispatcher{}
	first.On("SendSettlement", mock.Anything, mock.Anything).Return(nil).Once()
	second.On("SendSettlement", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	svc := NewNotificationService(zap.NewNop(), first, second)

	svc.NotifySettlement(SettlementNotice{MemberID: "M-1", TransactionID: "T-1"})
	svc.Wait()

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestWebhookDispatcher(t *testing.T) {
	var (
		gotAuth  string
		gotEvent webhookEnvelope
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotEvent)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewWebhookDispatcher(srv.URL, "secret")
	err := d.SendSettlement(context.Background(), SettlementNotice{MemberID: "M-1", Kind: domain.KindDeposit})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "settlement", gotEvent.Event)
}

func TestWebhookDispatcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookDispatcher(srv.URL, "").SendDueReminder(context.Background(), DueReminder{MemberID: "M-1"})
	assert.Error(t, err)
}
