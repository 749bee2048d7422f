package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sunjava/telcodesk/internal/models"
	"github.com/sunjava/telcodesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stubs embed the store interfaces; only the methods a test path touches are
// implemented.

type stubAccountStore struct {
	service.AccountStore
	account *models.Account
}

func (s *stubAccountStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	if s.account != nil && s.account.ID == id {
		return s.account, nil
	}
	return nil, nil
}

func (s *stubAccountStore) FindByAccountNumber(_ context.Context, number string) (*models.Account, error) {
	if s.account != nil && s.account.AccountNumber == number {
		return s.account, nil
	}
	return nil, nil
}

func (s *stubAccountStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.AccountStatus) error {
	if s.account != nil && s.account.ID == id {
		s.account.Status = status
	}
	return nil
}

type stubLineStore struct {
	service.LineStore
	lines []*models.Line
}

func (s *stubLineStore) FindByAccount(_ context.Context, accountID primitive.ObjectID, status models.LineStatus) ([]*models.Line, error) {
	var out []*models.Line
	for _, l := range s.lines {
		if l.AccountID == accountID && (status == "" || l.Status == status) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubLineStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.LineStatus) error {
	for _, l := range s.lines {
		if l.ID == id {
			l.Status = status
		}
	}
	return nil
}

func (s *stubLineStore) CancelByAccount(_ context.Context, accountID primitive.ObjectID, at time.Time) (int64, error) {
	var n int64
	for _, l := range s.lines {
		if l.AccountID == accountID {
			l.Status = models.LineStatusCancelled
			l.CancelledAt = &at
			n++
		}
	}
	return n, nil
}

func (s *stubLineStore) CountByAccountAndStatus(_ context.Context, accountID primitive.ObjectID, status models.LineStatus) (int64, error) {
	var n int64
	for _, l := range s.lines {
		if l.AccountID == accountID && l.Status == status {
			n++
		}
	}
	return n, nil
}

type stubLineServiceStore struct {
	service.LineServiceStore
	items []*models.LineService
}

func (s *stubLineServiceStore) FindByLines(_ context.Context, lineIDs []primitive.ObjectID, statuses ...models.LineServiceStatus) ([]*models.LineService, error) {
	return s.items, nil
}

type notConfiguredModel struct{}

func (notConfiguredModel) Configured() bool { return false }
func (notConfiguredModel) CreateChatCompletion(context.Context, *service.ChatCompletionRequest) (*service.ChatCompletionResponse, error) {
	return nil, service.ErrModelNotConfigured
}

type handlerFixture struct {
	router    *gin.Engine
	accountID primitive.ObjectID
	lineStore *stubLineStore
}

func newHandlerFixture(lines ...*models.Line) *handlerFixture {
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	account := &models.Account{
		ID:            primitive.NewObjectID(),
		AccountNumber: "ACC-10001",
		OwnerName:     "Acme Corp",
		Status:        models.AccountStatusActive,
		AccountType:   models.AccountTypeBusiness,
	}
	accountStore := &stubAccountStore{account: account}

	lineStore := &stubLineStore{}
	for _, l := range lines {
		if l.ID.IsZero() {
			l.ID = primitive.NewObjectID()
		}
		l.AccountID = account.ID
		lineStore.lines = append(lineStore.lines, l)
	}

	accounts := service.NewAccountService(accountStore, lineStore, nil, &stubLineServiceStore{}, nil, nil, log)
	lineOps := service.NewLineOpsService(lineStore, nil, log)
	assistant := service.NewAssistant(notConfiguredModel{}, "gpt-4", accounts, lineOps, nil, nil, log)

	handler := NewHTTPHandler(accounts, lineOps, nil, nil, assistant, log)

	router := gin.New()
	router.GET("/api/v1/accounts/:account_id", handler.GetAccount)
	router.POST("/api/v1/accounts/:account_id/status", handler.UpdateAccountStatus)
	router.GET("/api/v1/accounts/:account_id/lines", handler.ListLines)
	router.POST("/api/v1/accounts/:account_id/lines/suspend", handler.BulkLineOperation(models.LineOpSuspend))
	router.POST("/api/v1/accounts/:account_id/chat/message", handler.ChatMessage)

	return &handlerFixture{router: router, accountID: account.ID, lineStore: lineStore}
}

func (f *handlerFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGetAccountUnknownNumber(t *testing.T) {
	f := newHandlerFixture()

	// Anything that is not an object ID is treated as an account number.
	w := f.do(http.MethodGet, "/api/v1/accounts/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAccountByNumber(t *testing.T) {
	f := newHandlerFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
	)

	w := f.do(http.MethodGet, "/api/v1/accounts/ACC-10001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Account struct {
			AccountNumber string `json:"account_number"`
		} `json:"account"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACC-10001", resp.Account.AccountNumber)
}

func TestGetAccountNotFound(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(http.MethodGet, "/api/v1/accounts/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAccountSummary(t *testing.T) {
	f := newHandlerFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
		&models.Line{LineName: "Line 2", Status: models.LineStatusSuspended},
	)

	w := f.do(http.MethodGet, "/api/v1/accounts/"+f.accountID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Account struct {
			AccountNumber string `json:"account_number"`
		} `json:"account"`
		Lines models.LineStatusCounts `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACC-10001", resp.Account.AccountNumber)
	assert.Equal(t, int64(2), resp.Lines.Total)
	assert.Equal(t, int64(1), resp.Lines.Active)
}

func TestUpdateAccountStatusValidation(t *testing.T) {
	f := newHandlerFixture()
	path := "/api/v1/accounts/" + f.accountID.Hex() + "/status"

	w := f.do(http.MethodPost, path, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, path, map[string]string{"status": "PAUSED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAccountStatusCascades(t *testing.T) {
	f := newHandlerFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
		&models.Line{LineName: "Line 2", Status: models.LineStatusSuspended},
	)

	w := f.do(http.MethodPost, "/api/v1/accounts/"+f.accountID.Hex()+"/status", map[string]string{"status": "INACTIVE"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		CancelledLines int64                   `json:"cancelled_lines"`
		Lines          models.LineStatusCounts `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.CancelledLines)
	assert.Equal(t, int64(2), resp.Lines.Cancelled)
}

func TestSuspendPartialFailureIsOK(t *testing.T) {
	f := newHandlerFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
		&models.Line{LineName: "Line 2", Status: models.LineStatusSuspended},
	)

	w := f.do(http.MethodPost, "/api/v1/accounts/"+f.accountID.Hex()+"/lines/suspend",
		map[string]interface{}{"line_identifiers": []string{}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Updated int `json:"updated"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 0, resp.Skipped)
}

func TestListLinesFiltersByStatus(t *testing.T) {
	f := newHandlerFixture(
		&models.Line{LineName: "Line 1", Status: models.LineStatusActive},
		&models.Line{LineName: "Line 2", Status: models.LineStatusSuspended},
	)

	w := f.do(http.MethodGet, "/api/v1/accounts/"+f.accountID.Hex()+"/lines?status=SUSPENDED", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestChatMessageValidation(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(http.MethodPost, "/api/v1/accounts/"+f.accountID.Hex()+"/chat/message", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatMessageWithoutModelKey(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(http.MethodPost, "/api/v1/accounts/"+f.accountID.Hex()+"/chat/message",
		map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var reply models.ChatReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Contains(t, reply.Response, "not configured")
}
