package routes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spsc-coopfund/internal/adapters/http/middleware"
	"spsc-coopfund/internal/adapters/http/routes"
	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/adapters/persistence/testdb"
	"spsc-coopfund/internal/config"
	"spsc-coopfund/internal/core/domain"
	"spsc-coopfund/internal/core/services"
	"spsc-coopfund/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "test-secret"
	testIssuer = "spsc-coopfund"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type harness struct {
	t     *testing.T
	app   *fiber.App
	repos repositories.Repos
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testdb.Open(t)
	repos := repositories.NewRepos(db)
	ctx := context.Background()

	require.NoError(t, repos.Pool.Ensure(ctx, decimal.RequireFromString("50000")))
	require.NoError(t, repos.LoanTypes.Create(ctx, &models.LoanType{
		Code: string(domain.LoanRegular), Name: "Regular Loan",
		MonthlyRate: decimal.RequireFromString("0.02"), ProcessingFeeRate: decimal.RequireFromString("0.01"),
		MinTerm: 1, MaxTerm: 24, MaxAmount: decimal.Zero, IsActive: true,
	}))
	for _, id := range []string{"M-1", "M-2"} {
		require.NoError(t, repos.Members.Create(ctx, &models.Member{
			MemberID:             id,
			FirstName:            "Juan",
			LastName:             "Dela Cruz",
			Email:                id + "@coop.test",
			Balance:              decimal.RequireFromString("1000"),
			OutstandingLoanTotal: decimal.Zero,
			Status:               domain.MemberActive,
		}))
	}

	cfg := &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: testSecret, Issuer: testIssuer},
	}
	logger := zap.NewNop()
	notifier := services.NewNotificationService(logger)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	routes.Setup(app, db, cfg, notifier, logger)

	return &harness{t: t, app: app, repos: repos}
}

func (h *harness) token(membNo, username string, role domain.Role) string {
	h.t.Helper()
	tok, err := jwt.GenerateAccessToken(membNo, username, string(role), testSecret, testIssuer, 60)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, token, body string) (int, envelope) {
	h.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	if len(raw) > 0 {
		require.NoError(h.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (h *harness) balance(memberID string) string {
	h.t.Helper()
	m, err := h.repos.Members.GetByID(context.Background(), memberID)
	require.NoError(h.t, err)
	return m.Balance.StringFixed(2)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRequests_RequireToken(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/api/v1/requests/deposits", "", `{"member_id":"M-1"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestDepositApproveFlow(t *testing.T) {
	h := newHarness(t)
	member := h.token("M-1", "juan", domain.RoleUser)
	officer := h.token("", "officer1", domain.RoleOfficer)

	status, env := h.do(http.MethodPost, "/api/v1/requests/deposits", member,
		`{"member_id":"M-1","transaction_id":"T1","amount_to_be_deposited":"250.50","deposit_option":"GCASH","account_number":"0917","proof_of_deposit_url":"https://proof.test/1.png"}`)
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = h.do(http.MethodGet, "/api/v1/admin/requests?kind=DEPOSIT", officer, "")
	require.Equal(t, http.StatusOK, status, env.Error)
	var page struct {
		Data []models.TransactionRequest `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Meta.Total)

	status, env = h.do(http.MethodPost, "/api/v1/admin/requests/M-1/T1/approve", officer, "")
	require.Equal(t, http.StatusOK, status, env.Error)
	var result services.SettlementResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, services.OutcomeSettled, result.Outcome)
	assert.Equal(t, domain.StateApproved, result.Status)
	assert.Equal(t, "1250.50", h.balance("M-1"))

	// a second approval is a benign no-op
	status, env = h.do(http.MethodPost, "/api/v1/admin/requests/M-1/T1/approve", officer, "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, services.OutcomeAlreadyProcessed, result.Outcome)
	assert.Equal(t, "1250.50", h.balance("M-1"))

	status, env = h.do(http.MethodGet, "/api/v1/admin/ledger/M-1/deposit/T1", officer, "")
	require.Equal(t, http.StatusOK, status, env.Error)
	var got struct {
		Entry models.LedgerEntry `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "250.50", got.Entry.SettledAmount.StringFixed(2))
	assert.Equal(t, "officer1", got.Entry.DecidedBy)
}

func TestSubmit_OnlyForOwnAccount(t *testing.T) {
	h := newHarness(t)
	member := h.token("M-1", "juan", domain.RoleUser)

	status, _ := h.do(http.MethodPost, "/api/v1/requests/loan-payments", member,
		`{"member_id":"M-2","transaction_id":"T1","amount_to_be_paid":"100"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(http.MethodGet, "/api/v1/members/M-2", member, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, env := h.do(http.MethodGet, "/api/v1/members/M-1", member, "")
	assert.Equal(t, http.StatusOK, status, env.Error)
}

func TestSubmit_ErrorMapping(t *testing.T) {
	h := newHarness(t)
	member := h.token("M-1", "juan", domain.RoleUser)

	withdraw := `{"member_id":"M-1","transaction_id":"W1","amount_withdrawn":"100","withdraw_option":"BANK","account_name":"Juan","account_number":"123"}`
	status, env := h.do(http.MethodPost, "/api/v1/requests/withdrawals", member, withdraw)
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, _ = h.do(http.MethodPost, "/api/v1/requests/withdrawals", member, withdraw)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.do(http.MethodPost, "/api/v1/requests/withdrawals", member,
		`{"member_id":"M-1","transaction_id":"W2","amount_withdrawn":"5000","withdraw_option":"BANK","account_name":"Juan","account_number":"123"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = h.do(http.MethodPost, "/api/v1/requests/withdrawals", member,
		`{"member_id":"M-1","transaction_id":"W3","amount_withdrawn":"-1","withdraw_option":"BANK","account_name":"Juan","account_number":"123"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(http.MethodPost, "/api/v1/requests/membership-withdrawals", member,
		`{"member_id":"M-1","transaction_id":"X1","reason":"moving"}`)
	assert.Equal(t, http.StatusCreated, status)
}

func TestAdmin_ApproveInsufficientFundsIs422(t *testing.T) {
	h := newHarness(t)
	member := h.token("M-1", "juan", domain.RoleUser)
	admin := h.token("", "admin", domain.RoleAdmin)

	for _, tx := range []string{"W1", "W2"} {
		status, env := h.do(http.MethodPost, "/api/v1/requests/withdrawals", member,
			`{"member_id":"M-1","transaction_id":"`+tx+`","amount_withdrawn":"700","withdraw_option":"BANK","account_name":"Juan","account_number":"123"}`)
		require.Equal(t, http.StatusCreated, status, env.Error)
	}

	status, _ := h.do(http.MethodPost, "/api/v1/admin/requests/M-1/W1/approve", admin, "")
	require.Equal(t, http.StatusOK, status)

	status, env := h.do(http.MethodPost, "/api/v1/admin/requests/M-1/W2/approve", admin, "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, env.Success)
	assert.Equal(t, "INSUFFICIENT_FUNDS", env.Code)
	assert.Equal(t, "300.00", h.balance("M-1"))

	status, _ = h.do(http.MethodPost, "/api/v1/admin/requests/M-1/W2/reject", admin, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "300.00", h.balance("M-1"))
}

func TestAdmin_MembersCannotReach(t *testing.T) {
	h := newHarness(t)
	member := h.token("M-1", "juan", domain.RoleUser)

	status, _ := h.do(http.MethodGet, "/api/v1/admin/dashboard", member, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.do(http.MethodPost, "/api/v1/admin/requests/M-1/T1/approve", member, "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdmin_Dashboard(t *testing.T) {
	h := newHarness(t)
	officer := h.token("", "officer1", domain.RoleOfficer)

	status, env := h.do(http.MethodGet, "/api/v1/admin/dashboard", officer, "")
	require.Equal(t, http.StatusOK, status, env.Error)

	var data services.AdminDashboardData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "50000.00", data.PoolTotal.StringFixed(2))
	assert.Equal(t, int64(2), data.TotalMembers)
}

func TestMaster_LoanTypes(t *testing.T) {
	h := newHarness(t)
	officer := h.token("", "officer1", domain.RoleOfficer)
	admin := h.token("", "admin", domain.RoleAdmin)

	status, env := h.do(http.MethodGet, "/api/v1/master/loan-types", officer, "")
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"code":"REGULAR"`)

	body := `{"code":"quickcash","name":"QuickCash","monthly_rate":"0.03","processing_fee_rate":"0.02","min_term":1,"max_term":3,"max_amount":"5000"}`
	status, _ = h.do(http.MethodPost, "/api/v1/master/loan-types", officer, body)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = h.do(http.MethodPost, "/api/v1/master/loan-types", admin, body)
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, _ = h.do(http.MethodPost, "/api/v1/master/loan-types", admin, body)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = h.do(http.MethodPost, "/api/v1/master/loan-types", admin,
		`{"code":"PAYDAY","name":"Payday","min_term":1,"max_term":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
}
