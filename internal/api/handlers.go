package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"plowmarket/internal/constants"
	"plowmarket/internal/db"
	"plowmarket/internal/models"
	"plowmarket/internal/utils"
)

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RegisterShovelerRequest - структура запроса регистрации подрядчика.
type RegisterShovelerRequest struct {
	Phone         string `json:"phone"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Tagline       string `json:"tagline,omitempty"`
	VenmoHandle   string `json:"venmo_handle,omitempty"`
	CashAppHandle string `json:"cashapp_handle,omitempty"`
}

// RegisterCustomerRequest - структура запроса регистрации клиента.
type RegisterCustomerRequest struct {
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	Address   string `json:"address,omitempty"`
}

// UpdateProfileRequest - структура запроса обновления профиля подрядчика.
// Nil-поля не трогаются, переданные перезаписываются.
type UpdateProfileRequest struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Tagline       *string `json:"tagline,omitempty"`
	VenmoHandle   *string `json:"venmo_handle,omitempty"`
	CashAppHandle *string `json:"cashapp_handle,omitempty"`
}

// ShovelerStatusRequest - структура запроса переключения активности.
type ShovelerStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// --- Вспомогательные функции для JSON-ответов ---
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

// phoneFromURL извлекает и нормализует номер подрядчика из URL.
func phoneFromURL(r *http.Request) (string, error) {
	return utils.ValidatePhoneNumber(chi.URLParam(r, "phone"))
}

// limitFromQuery читает параметр limit с дефолтом и верхней границей.
func limitFromQuery(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// RegisterShoveler регистрирует нового подрядчика.
func RegisterShoveler(w http.ResponseWriter, r *http.Request) {
	var req RegisterShovelerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	phone, err := utils.ValidatePhoneNumber(req.Phone)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}
	if err := utils.ValidateName(req.FirstName); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid first name: "+err.Error())
		return
	}
	if err := utils.ValidateTagline(req.Tagline); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid tagline: "+err.Error())
		return
	}

	venmo := utils.NormalizePaymentHandle(req.VenmoHandle)
	cashapp := utils.NormalizePaymentHandle(req.CashAppHandle)
	if err := utils.ValidatePaymentHandle(venmo); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid Venmo handle: "+err.Error())
		return
	}
	if err := utils.ValidatePaymentHandle(cashapp); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid Cash App handle: "+err.Error())
		return
	}

	s := models.Shoveler{
		Phone:         phone,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Tagline:       nullStr(req.Tagline),
		VenmoHandle:   nullStr(venmo),
		CashAppHandle: nullStr(cashapp),
		IsActive:      true,
	}

	id, err := db.CreateShoveler(s)
	if err != nil {
		log.Printf("RegisterShoveler: ошибка создания подрядчика %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to register shoveler")
		return
	}
	s.ID = id

	writeJSONSuccess(w, "Shoveler registered", s)
}

// RegisterCustomer регистрирует нового клиента.
func RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req RegisterCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	phone, err := utils.ValidatePhoneNumber(req.Phone)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}
	if err := utils.ValidateName(req.FirstName); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid first name: "+err.Error())
		return
	}
	if len(req.Address) > constants.MAX_ADDRESS_LENGTH {
		writeJSONError(w, http.StatusBadRequest, "Address is too long")
		return
	}

	c := models.Customer{
		Phone:     phone,
		FirstName: req.FirstName,
		Address:   nullStr(req.Address),
	}

	id, err := db.CreateCustomer(c)
	if err != nil {
		log.Printf("RegisterCustomer: ошибка создания клиента %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to register customer")
		return
	}
	c.ID = id

	writeJSONSuccess(w, "Customer registered", c)
}

// GetCustomerProfile возвращает профиль клиента по номеру телефона.
func GetCustomerProfile(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	c, err := db.GetCustomerByPhone(phone)
	if err != nil {
		if errors.Is(err, db.ErrCustomerNotFound) {
			writeJSONError(w, http.StatusNotFound, "Customer not found")
			return
		}
		log.Printf("GetCustomerProfile: ошибка получения клиента %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load customer")
		return
	}

	writeJSONSuccess(w, "Customer retrieved", c)
}

// GetShovelerProfile возвращает профиль подрядчика по номеру телефона.
func GetShovelerProfile(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	s, err := db.GetShovelerByPhone(phone)
	if err != nil {
		if errors.Is(err, db.ErrShovelerNotFound) {
			writeJSONError(w, http.StatusNotFound, "Shoveler not found")
			return
		}
		log.Printf("GetShovelerProfile: ошибка получения профиля %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSONSuccess(w, "Profile retrieved", s)
}

// UpdateShovelerProfile обновляет переданные поля профиля подрядчика.
func UpdateShovelerProfile(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var firstName, lastName, tagline, venmo, cashapp sql.NullString
	if req.FirstName != nil {
		if err := utils.ValidateName(*req.FirstName); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid first name: "+err.Error())
			return
		}
		firstName = sql.NullString{String: *req.FirstName, Valid: true}
	}
	if req.LastName != nil {
		lastName = sql.NullString{String: *req.LastName, Valid: true}
	}
	if req.Tagline != nil {
		if err := utils.ValidateTagline(*req.Tagline); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid tagline: "+err.Error())
			return
		}
		tagline = sql.NullString{String: *req.Tagline, Valid: true}
	}
	if req.VenmoHandle != nil {
		normalized := utils.NormalizePaymentHandle(*req.VenmoHandle)
		if err := utils.ValidatePaymentHandle(normalized); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid Venmo handle: "+err.Error())
			return
		}
		venmo = sql.NullString{String: normalized, Valid: true}
	}
	if req.CashAppHandle != nil {
		normalized := utils.NormalizePaymentHandle(*req.CashAppHandle)
		if err := utils.ValidatePaymentHandle(normalized); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid Cash App handle: "+err.Error())
			return
		}
		cashapp = sql.NullString{String: normalized, Valid: true}
	}

	if err := db.UpdateShovelerProfile(phone, firstName, lastName, tagline, venmo, cashapp); err != nil {
		if errors.Is(err, db.ErrShovelerNotFound) {
			writeJSONError(w, http.StatusNotFound, "Shoveler not found")
			return
		}
		log.Printf("UpdateShovelerProfile: ошибка обновления профиля %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSONSuccess(w, "Profile updated", nil)
}

// SetShovelerStatus включает или выключает приём заданий подрядчиком.
func SetShovelerStatus(w http.ResponseWriter, r *http.Request) {
	phone, err := phoneFromURL(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid phone number: "+err.Error())
		return
	}

	var req ShovelerStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := db.UpdateShovelerActive(phone, req.IsActive); err != nil {
		if errors.Is(err, db.ErrShovelerNotFound) {
			writeJSONError(w, http.StatusNotFound, "Shoveler not found")
			return
		}
		log.Printf("SetShovelerStatus: ошибка смены статуса %s: %v", phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	writeJSONSuccess(w, "Status updated", map[string]bool{"is_active": req.IsActive})
}
