package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/sunjava/telcodesk/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeAccountStore struct {
	accounts []*models.Account
}

func (f *fakeAccountStore) Create(_ context.Context, account *models.Account) error {
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	f.accounts = append(f.accounts, account)
	return nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) FindByAccountNumber(_ context.Context, number string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.AccountNumber == number {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) FindAll(_ context.Context) ([]*models.Account, error) {
	return f.accounts, nil
}

func (f *fakeAccountStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.AccountStatus) error {
	for _, a := range f.accounts {
		if a.ID == id {
			a.Status = status
			a.LastModifiedAt = time.Now()
		}
	}
	return nil
}

func (f *fakeAccountStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.accounts)), nil
}

type fakeLineStore struct {
	lines     []*models.Line
	statusErr error
}

func (f *fakeLineStore) Create(_ context.Context, line *models.Line) error {
	if line.ID.IsZero() {
		line.ID = primitive.NewObjectID()
	}
	line.AddedAt = time.Now()
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeLineStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Line, error) {
	for _, l := range f.lines {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeLineStore) FindByAccount(_ context.Context, accountID primitive.ObjectID, status models.LineStatus) ([]*models.Line, error) {
	var out []*models.Line
	for _, l := range f.lines {
		if l.AccountID != accountID {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineName < out[j].LineName })
	return out, nil
}

func (f *fakeLineStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.LineStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	for _, l := range f.lines {
		if l.ID == id {
			l.Status = status
		}
	}
	return nil
}

func (f *fakeLineStore) MarkCancelled(_ context.Context, id primitive.ObjectID, at time.Time) error {
	for _, l := range f.lines {
		if l.ID == id {
			l.Status = models.LineStatusCancelled
			l.CancelledAt = &at
		}
	}
	return nil
}

func (f *fakeLineStore) Reactivate(_ context.Context, id primitive.ObjectID) error {
	for _, l := range f.lines {
		if l.ID == id {
			l.Status = models.LineStatusActive
			l.CancelledAt = nil
		}
	}
	return nil
}

func (f *fakeLineStore) CancelByAccount(_ context.Context, accountID primitive.ObjectID, at time.Time) (int64, error) {
	var n int64
	for _, l := range f.lines {
		if l.AccountID == accountID {
			l.Status = models.LineStatusCancelled
			l.CancelledAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeLineStore) Update(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	for _, l := range f.lines {
		if l.ID != id {
			continue
		}
		if v, ok := fields["line_name"]; ok {
			l.LineName = v.(string)
		}
		if v, ok := fields["employee_name"]; ok {
			l.EmployeeName = v.(string)
		}
		if v, ok := fields["plan_name"]; ok {
			l.PlanName = v.(string)
		}
		if v, ok := fields["payment_due_date"]; ok {
			due := v.(time.Time)
			l.PaymentDueDate = &due
		}
	}
	return nil
}

func (f *fakeLineStore) CountByAccount(_ context.Context, accountID primitive.ObjectID) (int64, error) {
	var n int64
	for _, l := range f.lines {
		if l.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLineStore) CountByAccountAndStatus(_ context.Context, accountID primitive.ObjectID, status models.LineStatus) (int64, error) {
	var n int64
	for _, l := range f.lines {
		if l.AccountID == accountID && l.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeLineStore) CountByStatus(_ context.Context, status models.LineStatus) (int64, error) {
	var n int64
	for _, l := range f.lines {
		if l.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeServiceStore struct {
	services []*models.Service
}

func (f *fakeServiceStore) Create(_ context.Context, service *models.Service) error {
	if service.ID.IsZero() {
		service.ID = primitive.NewObjectID()
	}
	f.services = append(f.services, service)
	return nil
}

func (f *fakeServiceStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Service, error) {
	for _, s := range f.services {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeServiceStore) FindByName(_ context.Context, name string) (*models.Service, error) {
	for _, s := range f.services {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeServiceStore) FindActive(_ context.Context) ([]*models.Service, error) {
	var out []*models.Service
	for _, s := range f.services {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (f *fakeServiceStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.services)), nil
}

type fakeLineServiceStore struct {
	items []*models.LineService
}

func (f *fakeLineServiceStore) Create(_ context.Context, ls *models.LineService) error {
	if ls.ID.IsZero() {
		ls.ID = primitive.NewObjectID()
	}
	ls.CreatedAt = time.Now()
	f.items = append(f.items, ls)
	return nil
}

func (f *fakeLineServiceStore) FindByLine(_ context.Context, lineID primitive.ObjectID) ([]*models.LineService, error) {
	var out []*models.LineService
	for _, ls := range f.items {
		if ls.LineID == lineID {
			out = append(out, ls)
		}
	}
	return out, nil
}

func (f *fakeLineServiceStore) FindByLines(_ context.Context, lineIDs []primitive.ObjectID, statuses ...models.LineServiceStatus) ([]*models.LineService, error) {
	ids := make(map[primitive.ObjectID]bool, len(lineIDs))
	for _, id := range lineIDs {
		ids[id] = true
	}
	var out []*models.LineService
	for _, ls := range f.items {
		if !ids[ls.LineID] {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, st := range statuses {
				if ls.Status == st {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, ls)
	}
	return out, nil
}

func (f *fakeLineServiceStore) HasOpenSubscription(_ context.Context, lineID, serviceID primitive.ObjectID) (bool, error) {
	for _, ls := range f.items {
		if ls.LineID == lineID && ls.ServiceID == serviceID &&
			(ls.Status == models.LineServiceStatusPending || ls.Status == models.LineServiceStatusActive) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLineServiceStore) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, ls := range f.items {
		if !ls.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type fakeModelClient struct {
	configured bool
	response   *ChatCompletionResponse
	err        error
	lastReq    *ChatCompletionRequest
}

func (f *fakeModelClient) Configured() bool {
	return f.configured
}

func (f *fakeModelClient) CreateChatCompletion(_ context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func textCompletion(content string) *ChatCompletionResponse {
	resp := &ChatCompletionResponse{}
	resp.Choices = append(resp.Choices, struct {
		Message      CompletionMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	}{
		Message:      CompletionMessage{Role: "assistant", Content: content},
		FinishReason: "stop",
	})
	return resp
}

func functionCompletion(name, arguments string) *ChatCompletionResponse {
	resp := &ChatCompletionResponse{}
	resp.Choices = append(resp.Choices, struct {
		Message      CompletionMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	}{
		Message: CompletionMessage{
			Role:         "assistant",
			FunctionCall: &FunctionCall{Name: name, Arguments: arguments},
		},
		FinishReason: "function_call",
	})
	return resp
}
