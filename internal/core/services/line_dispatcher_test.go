package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLINEDispatcher_PushesToLinkedMember(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Members.Create(f.ctx, &models.Member{
		MemberID:             "M-LINE",
		FirstName:            "Maria",
		LastName:             "Santos",
		Balance:              decimal.Zero,
		OutstandingLoanTotal: decimal.Zero,
		Status:               domain.MemberActive,
		LineUserID:           "U123",
	}))

	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer channel-token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewLINEDispatcher(f.repos.Members, "channel-token")
	d.endpoint = srv.URL

	approved := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	err := d.SendSettlement(f.ctx, SettlementNotice{
		MemberID:      "M-LINE",
		TransactionID: "T1",
		Amount:        dec("200"),
		DateApproved:  &approved,
		FirstName:     "Maria",
		LastName:      "Santos",
		Kind:          domain.KindDeposit,
	})
	require.NoError(t, err)

	assert.Equal(t, "U123", got["to"])
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 1)
	text := messages[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "DEPOSIT request T1 for 200.00 was approved")
}

func TestLINEDispatcher_SkipsUnlinkedMember(t *testing.T) {
	f := newFixture(t)
	f.addMember("M-1", "100")

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	d := NewLINEDispatcher(f.repos.Members, "channel-token")
	d.endpoint = srv.URL

	require.NoError(t, d.SendDueReminder(f.ctx, DueReminder{MemberID: "M-1", DueDate: f.now}))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestLINEDispatcher_ErrorStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Members.Create(f.ctx, &models.Member{
		MemberID:             "M-LINE",
		FirstName:            "Maria",
		LastName:             "Santos",
		Balance:              decimal.Zero,
		OutstandingLoanTotal: decimal.Zero,
		Status:               domain.MemberActive,
		LineUserID:           "U123",
	}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid to"}`))
	}))
	defer srv.Close()

	d := NewLINEDispatcher(f.repos.Members, "channel-token")
	d.endpoint = srv.URL

	err := d.SendDueReminder(f.ctx, DueReminder{MemberID: "M-LINE", DueDate: f.now})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid to")
}
