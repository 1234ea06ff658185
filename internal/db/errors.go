package db

import "errors"

// Сигнальные ошибки слоя хранения. API-слой сопоставляет их с HTTP-кодами:
// not found -> 404, already completed -> 409.
// Sentinel errors of the storage layer. The API layer maps them to HTTP
// codes: not found -> 404, already completed -> 409.
var (
	ErrShovelerNotFound              = errors.New("подрядчик не найден")
	ErrCustomerNotFound              = errors.New("клиент не найден")
	ErrPayoutRequestNotFound         = errors.New("заявка на выплату не найдена")
	ErrPayoutRequestAlreadyCompleted = errors.New("заявка на выплату уже исполнена")
)
