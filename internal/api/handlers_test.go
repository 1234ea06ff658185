package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"plowmarket/internal/db"
	"plowmarket/internal/models"
	"plowmarket/internal/reconcile"
)

func TestAuthMiddleware(t *testing.T) {
	handler := AuthMiddleware("top-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{"верный ключ", "top-secret", http.StatusOK},
		{"неверный ключ", "wrong", http.StatusUnauthorized},
		{"без ключа", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/ledger", nil)
			if tc.key != "" {
				req.Header.Set("X-Api-Key", tc.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Errorf("ожидался статус %d, получен %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthMiddlewareEmptySecret(t *testing.T) {
	// Без настроенного секрета API закрыт целиком, даже для пустого ключа.
	handler := AuthMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/admin/ledger", nil)
	req.Header.Set("X-Api-Key", "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", rec.Code)
	}
}

func TestRegisterShovelerInvalidPhone(t *testing.T) {
	body, _ := json.Marshal(RegisterShovelerRequest{Phone: "12345", FirstName: "Alex"})
	req := httptest.NewRequest("POST", "/api/shovelers/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	RegisterShoveler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400 для некорректного номера, получен %d", rec.Code)
	}
}

func TestRegisterShovelerInvalidBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/shovelers/register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	RegisterShoveler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400 для битого JSON, получен %d", rec.Code)
	}
}

func TestAddEarningValidation(t *testing.T) {
	cases := []struct {
		name string
		body AddEarningRequest
	}{
		{"нулевая сумма", AddEarningRequest{JobID: 1, ShovelerPhone: "+15551234567", Amount: 0}},
		{"отрицательная сумма", AddEarningRequest{JobID: 1, ShovelerPhone: "+15551234567", Amount: -5}},
		{"дробные доли цента", AddEarningRequest{JobID: 1, ShovelerPhone: "+15551234567", Amount: 10.001}},
		{"без job_id", AddEarningRequest{ShovelerPhone: "+15551234567", Amount: 30}},
		{"некорректный номер", AddEarningRequest{JobID: 1, ShovelerPhone: "12345", Amount: 30}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest("POST", "/api/earnings", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			AddEarning(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("ожидался статус 400, получен %d", rec.Code)
			}
		})
	}
}

func TestCreatePayoutRequestAmountValidation(t *testing.T) {
	// Нулевая и отрицательная сумма отклоняются до обращения к БД.
	cases := []struct {
		name   string
		amount float64
	}{
		{"нулевая сумма", 0},
		{"отрицательная сумма", -45},
		{"дробные доли цента", 10.001},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(PayoutRequestBody{Amount: tc.amount})
			req := httptest.NewRequest("POST", "/api/shovelers/+15551234567/payout-request", bytes.NewReader(body))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("phone", "+15551234567")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			CreatePayoutRequest(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("ожидался статус 400, получен %d", rec.Code)
			}
		})
	}
}

func TestLimitFromQuery(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=5", 5},
		{"limit=0", 20},
		{"limit=-3", 20},
		{"limit=abc", 20},
		{"limit=9999", 500},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/api/test?"+tc.query, nil)
		if got := limitFromQuery(req, 20, 500); got != tc.want {
			t.Errorf("limitFromQuery(%q): ожидалось %d, получено %d", tc.query, tc.want, got)
		}
	}
}

// --- Фейковое хранилище для проверки админского расчёта через HTTP ---

type settleFakeTx struct {
	request    models.PayoutRequest
	requestErr error
	flipped    int64
}

func (f *settleFakeTx) CompletePayoutRequest(requestID int64) (models.PayoutRequest, error) {
	if f.requestErr != nil {
		return models.PayoutRequest{}, f.requestErr
	}
	return f.request, nil
}

func (f *settleFakeTx) MarkAllJobsPaidOut(shovelerPhone string) (int64, error) {
	return f.flipped, nil
}

func (f *settleFakeTx) JobsForShoveler(shovelerPhone string, jobIDs []int64) ([]models.Job, error) {
	return nil, nil
}

func (f *settleFakeTx) MarkJobsPaidOutByIDs(shovelerPhone string, jobIDs []int64) (int64, error) {
	return f.flipped, nil
}

func (f *settleFakeTx) Commit() error   { return nil }
func (f *settleFakeTx) Rollback() error { return nil }

type settleFakeStore struct {
	tx *settleFakeTx
}

func (s *settleFakeStore) Begin() (reconcile.Tx, error) { return s.tx, nil }

type noopNotifier struct{}

func (noopNotifier) PayoutSent(shovelerPhone string, amount float64) error { return nil }

func settleRequest(t *testing.T, reconciler *reconcile.Reconciler, body SettlePayoutRequest) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/admin/settle-payout", bytes.NewReader(raw))
	if reconciler != nil {
		ctx := context.WithValue(req.Context(), ReconcilerContextKey, reconciler)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	SettlePayout(rec, req)
	return rec
}

func TestSettlePayoutVariantValidation(t *testing.T) {
	// Ровно один вариант расчёта на запрос: ни одного или оба сразу - 400.
	cases := []struct {
		name string
		body SettlePayoutRequest
	}{
		{"пустой запрос", SettlePayoutRequest{}},
		{"оба варианта сразу", SettlePayoutRequest{RequestID: 7, ShovelerPhone: "+15551234567", JobIDs: []int64{1}}},
		{"request_id вместе с job_ids", SettlePayoutRequest{RequestID: 7, JobIDs: []int64{1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := settleRequest(t, nil, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("ожидался статус 400, получен %d", rec.Code)
			}
		})
	}
}

func TestSettlePayoutByRequestSuccess(t *testing.T) {
	store := &settleFakeStore{tx: &settleFakeTx{
		request: models.PayoutRequest{ID: 7, ShovelerPhone: "+15551234567", Amount: 90.00},
		flipped: 3,
	}}
	reconciler := reconcile.New(store, noopNotifier{})

	rec := settleRequest(t, reconciler, SettlePayoutRequest{RequestID: 7})
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался статус 200, получен %d, тело: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status string           `json:"status"`
		Data   reconcile.Result `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if resp.Data.Amount != 90.00 || resp.Data.JobsFlipped != 3 {
		t.Errorf("неожиданный результат расчёта: %+v", resp.Data)
	}
}

func TestSettlePayoutAlreadyCompletedConflict(t *testing.T) {
	store := &settleFakeStore{tx: &settleFakeTx{requestErr: db.ErrPayoutRequestAlreadyCompleted}}
	reconciler := reconcile.New(store, noopNotifier{})

	rec := settleRequest(t, reconciler, SettlePayoutRequest{RequestID: 7})
	if rec.Code != http.StatusConflict {
		t.Errorf("ожидался статус 409 для исполненной заявки, получен %d", rec.Code)
	}
}

func TestSettlePayoutNotFound(t *testing.T) {
	store := &settleFakeStore{tx: &settleFakeTx{requestErr: db.ErrPayoutRequestNotFound}}
	reconciler := reconcile.New(store, noopNotifier{})

	rec := settleRequest(t, reconciler, SettlePayoutRequest{RequestID: 999})
	if rec.Code != http.StatusNotFound {
		t.Errorf("ожидался статус 404 для несуществующей заявки, получен %d", rec.Code)
	}
}

func TestSettlePayoutByJobsInvalidPhone(t *testing.T) {
	store := &settleFakeStore{tx: &settleFakeTx{}}
	reconciler := reconcile.New(store, noopNotifier{})

	rec := settleRequest(t, reconciler, SettlePayoutRequest{ShovelerPhone: "12345", JobIDs: []int64{1}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400 для некорректного номера, получен %d", rec.Code)
	}
}

func TestSettlePayoutByJobsEmptyIDs(t *testing.T) {
	store := &settleFakeStore{tx: &settleFakeTx{}}
	reconciler := reconcile.New(store, noopNotifier{})

	rec := settleRequest(t, reconciler, SettlePayoutRequest{ShovelerPhone: "+15551234567"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400 для пустого списка заданий, получен %d", rec.Code)
	}
}

func TestSettlePayoutInternalError(t *testing.T) {
	store := &settleFakeStore{tx: &settleFakeTx{requestErr: errors.New("connection refused")}}
	reconciler := reconcile.New(store, noopNotifier{})

	rec := settleRequest(t, reconciler, SettlePayoutRequest{RequestID: 7})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("ожидался статус 500, получен %d", rec.Code)
	}
}
