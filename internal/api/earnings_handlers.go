package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"plowmarket/internal/config"
	"plowmarket/internal/constants"
	"plowmarket/internal/db"
	"plowmarket/internal/utils"
)

// AddEarningRequest - структура запроса на запись в леджер после выполнения
// задания.
type AddEarningRequest struct {
	JobID         int64   `json:"job_id"`
	ShovelerPhone string  `json:"shoveler_phone"`
	Amount        float64 `json:"amount"`
}

// AddEarning записывает в леджер заработок по выполненному заданию. Деление
// на комиссию и выплату происходит на сервере по текущей ставке платформы.
func AddEarning(w http.ResponseWriter, r *http.Request) {
	var req AddEarningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	phone, err := utils.ValidatePhoneNumber(req.ShovelerPhone)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}
	if err := utils.ValidateAmount(req.Amount); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid amount: "+err.Error())
		return
	}
	if req.JobID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	feeRate := constants.DEFAULT_PLATFORM_FEE_RATE
	if cfg, ok := r.Context().Value(ConfigContextKey).(*config.Config); ok && cfg != nil {
		feeRate = cfg.PlatformFeeRate
	}

	entry, err := db.AddEarning(req.JobID, phone, req.Amount, feeRate)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to record earning")
		return
	}

	writeJSONSuccess(w, "Earning recorded", entry)
}

// GetShovelerEarnings возвращает агрегат заработка подрядчика: за сегодня,
// остаток к выплате и суммы за всё время. Для неизвестного номера возвращается
// нулевой агрегат, а не ошибка.
func GetShovelerEarnings(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	summary, err := db.GetEarningsSummaryForShoveler(phone, time.Now())
	if err != nil {
		log.Printf("GetShovelerEarnings: ошибка агрегации заработка для %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load earnings")
		return
	}

	writeJSONSuccess(w, "Earnings retrieved", summary)
}

// GetLedger возвращает последние записи леджера платформы с накопительными
// суммами для админской статистики.
func GetLedger(w http.ResponseWriter, r *http.Request) {
	limit := limitFromQuery(r, constants.DEFAULT_LEDGER_LIMIT, constants.MAX_LEDGER_LIMIT)

	ledger, err := db.GetPlatformLedger(limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to load ledger")
		return
	}

	writeJSONSuccess(w, "Ledger retrieved", ledger)
}

// ExportLedgerExcel отдаёт последние записи леджера в виде xlsx-файла для
// бухгалтерии.
func ExportLedgerExcel(w http.ResponseWriter, r *http.Request) {
	limit := limitFromQuery(r, constants.MAX_LEDGER_LIMIT, constants.MAX_LEDGER_LIMIT)

	ledger, err := db.GetPlatformLedger(limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to load ledger")
		return
	}

	f := excelize.NewFile()
	sheetName := "Леджер"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"ID", "ID Задания", "Телефон подрядчика", "Сумма задания", "Комиссия платформы", "Выплата подрядчику", "Дата"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, e := range ledger.Entries {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), e.ID)
		if e.JobID != 0 {
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), e.JobID)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), e.ShovelerPhone)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), e.JobAmount)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), e.PlatformFee)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), e.ShovelerPayout)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), e.CreatedAt.Format("02.01.2006 15:04"))
		rowIndex++
	}

	// Итоговая строка с накопительными суммами
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), "ИТОГО:")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), ledger.TotalRevenue)
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), ledger.PlatformFees)
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), ledger.ShovelerPayouts)

	filename := fmt.Sprintf("ledger_report_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(w); err != nil {
		log.Printf("ExportLedgerExcel: ошибка записи xlsx в ответ: %v", err)
	}
}
