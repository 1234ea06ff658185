package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"plowmarket/internal/constants"
	"plowmarket/internal/db"
	"plowmarket/internal/formatters"
	"plowmarket/internal/models"
	"plowmarket/internal/notify"
	"plowmarket/internal/reconcile"
	"plowmarket/internal/utils"
)

// SettlePayoutRequest - структура админского запроса на расчёт. Допустим ровно
// один вариант: либо request_id (исполнение заявки), либо shoveler_phone +
// job_ids (ручной расчёт по списку заданий).
type SettlePayoutRequest struct {
	RequestID     int64   `json:"request_id,omitempty"`
	ShovelerPhone string  `json:"shoveler_phone,omitempty"`
	JobIDs        []int64 `json:"job_ids,omitempty"`
}

// PayoutRequestBody - тело запроса подрядчика на выплату. Сумма обязательна
// и фиксируется в заявке как есть; сервер её позже не пересчитывает.
type PayoutRequestBody struct {
	Amount float64 `json:"amount"`
}

// CreatePayoutRequest создаёт заявку подрядчика на выплату. Сумма и реквизиты
// фиксируются в заявке на момент создания. Уведомления (бухгалтерии и
// подрядчику) уходят строго после сохранения заявки, их сбой не откатывает её.
func CreatePayoutRequest(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	var body PayoutRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Нулевая и отрицательная сумма отклоняются до каких-либо записей в БД.
	if err := utils.ValidateAmount(body.Amount); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid amount: "+err.Error())
		return
	}

	s, err := db.GetShovelerByPhone(phone)
	if err != nil {
		if errors.Is(err, db.ErrShovelerNotFound) {
			writeJSONError(w, http.StatusNotFound, "Shoveler not found")
			return
		}
		log.Printf("CreatePayoutRequest: ошибка получения подрядчика %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load shoveler")
		return
	}

	summary, err := db.GetEarningsSummaryForShoveler(phone, time.Now())
	if err != nil {
		log.Printf("CreatePayoutRequest: ошибка агрегации заработка для %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to compute pending payout")
		return
	}
	if body.Amount > summary.PendingPayout {
		log.Printf("CreatePayoutRequest: подрядчик %s запросил %.2f при остатке %.2f. Заявка создаётся, бухгалтерия проверит вручную.",
			phone, body.Amount, summary.PendingPayout)
	}

	req := models.PayoutRequest{
		Ref:           uuid.New().String(),
		ShovelerPhone: phone,
		Amount:        body.Amount,
		VenmoHandle:   s.VenmoHandle,
		CashAppHandle: s.CashAppHandle,
		Status:        constants.PAYOUT_STATUS_PENDING,
	}

	saved, err := db.CreatePayoutRequest(req)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to create payout request")
		return
	}

	// Уведомления после сохранения заявки; сбой не откатывает её.
	if notifier, ok := r.Context().Value(NotifierContextKey).(*notify.Notifier); ok && notifier != nil {
		notifier.RequestSubmitted(saved, s)
	}

	writeJSONSuccess(w, "Payout request created", saved)
}

// GetPayoutRequests возвращает заявки подрядчика на выплату, новые первыми.
func GetPayoutRequests(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	limit := limitFromQuery(r, constants.DEFAULT_PAYOUT_REQUESTS_PAGE_SIZE, constants.MAX_LEDGER_LIMIT)

	requests, err := db.GetPayoutRequestsByShoveler(phone, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to load payout requests")
		return
	}

	writeJSONSuccess(w, "Payout requests retrieved", requests)
}

// GetUnpaidJobs возвращает завершённые, но не оплаченные задания подрядчика.
// Админ использует этот список для ручного расчёта.
func GetUnpaidJobs(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	jobs, err := db.GetUnpaidCompletedJobsForShoveler(phone)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to load unpaid jobs")
		return
	}

	writeJSONSuccess(w, "Unpaid jobs retrieved", jobs)
}

// GetPayoutRequest возвращает одну заявку по ID - админский просмотр перед
// расчётом.
func GetPayoutRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || requestID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	req, err := db.GetPayoutRequestByID(requestID)
	if err != nil {
		if errors.Is(err, db.ErrPayoutRequestNotFound) {
			writeJSONError(w, http.StatusNotFound, "Payout request not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Failed to load payout request")
		return
	}

	writeJSONSuccess(w, "Payout request retrieved", req)
}

// SettlePayout - админская точка расчёта. Ровно один вариант на запрос:
// request_id ИЛИ shoveler_phone + job_ids; ни одного или оба сразу - ошибка.
func SettlePayout(w http.ResponseWriter, r *http.Request) {
	var req SettlePayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	byRequest := req.RequestID != 0
	byJobs := req.ShovelerPhone != "" || len(req.JobIDs) > 0
	if byRequest == byJobs {
		writeJSONError(w, http.StatusBadRequest, "Provide either request_id or shoveler_phone with job_ids, not both")
		return
	}

	reconciler, ok := r.Context().Value(ReconcilerContextKey).(*reconcile.Reconciler)
	if !ok || reconciler == nil {
		log.Println("SettlePayout: сервис расчётов не найден в контексте запроса.")
		writeJSONError(w, http.StatusInternalServerError, "Settlement service unavailable")
		return
	}

	if byRequest {
		result, err := reconciler.SettleByRequest(req.RequestID)
		if err != nil {
			switch {
			case errors.Is(err, db.ErrPayoutRequestNotFound):
				writeJSONError(w, http.StatusNotFound, "Payout request not found")
			case errors.Is(err, db.ErrPayoutRequestAlreadyCompleted):
				writeJSONError(w, http.StatusConflict, "Payout request is already completed")
			default:
				writeJSONError(w, http.StatusInternalServerError, "Failed to settle payout request")
			}
			return
		}
		writeJSONSuccess(w, "Payout request settled", result)
		return
	}

	phone, err := utils.ValidatePhoneNumber(req.ShovelerPhone)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}
	if len(req.JobIDs) == 0 {
		writeJSONError(w, http.StatusBadRequest, "job_ids must not be empty")
		return
	}

	result, err := reconciler.SettleByJobs(phone, req.JobIDs)
	if err != nil {
		if errors.Is(err, reconcile.ErrNoJobIDs) {
			writeJSONError(w, http.StatusBadRequest, "job_ids must not be empty")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Failed to settle jobs")
		return
	}

	if notifier, ok := r.Context().Value(NotifierContextKey).(*notify.Notifier); ok && notifier != nil {
		notifier.ManualSettlementRecorded(phone, result.JobsFlipped, result.Amount)
	}

	writeJSONSuccess(w, "Jobs settled", result)
}

// GetPayoutQR отдаёт PNG с QR-кодом ссылки на оплату Venmo по последней
// ожидающей заявке подрядчика. Бухгалтер сканирует код с экрана вместо
// ручного набора реквизитов.
func GetPayoutQR(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	requests, err := db.GetPayoutRequestsByShoveler(phone, constants.DEFAULT_PAYOUT_REQUESTS_PAGE_SIZE)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to load payout requests")
		return
	}

	var pending *models.PayoutRequest
	for i := range requests {
		if requests[i].Status == constants.PAYOUT_STATUS_PENDING {
			pending = &requests[i]
			break
		}
	}
	if pending == nil {
		writeJSONError(w, http.StatusNotFound, "No pending payout request")
		return
	}
	if !pending.VenmoHandle.Valid || pending.VenmoHandle.String == "" {
		writeJSONError(w, http.StatusNotFound, "No Venmo handle on file for this request")
		return
	}

	link := formatters.VenmoPaymentLink(pending.VenmoHandle.String, pending.Amount, pending.Ref)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GetPayoutQR: ошибка генерации QR-кода для заявки #%d: %v", pending.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
