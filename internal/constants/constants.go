package constants

// Статусы заданий (jobs). Жизненный цикл задания управляется внешней
// подсистемой; для расчётов нам важны только завершённые задания.
// Job statuses. The job lifecycle is managed by an external subsystem;
// only completed jobs matter for the accounting.
const (
	JOB_STATUS_POSTED    = "posted"
	JOB_STATUS_CLAIMED   = "claimed"
	JOB_STATUS_COMPLETED = "completed"
	JOB_STATUS_CANCELED  = "canceled"
)

// Статусы заявок на выплату. Других переходов не существует:
// pending -> completed, ровно один раз.
// Payout request statuses. No other transitions exist:
// pending -> completed, exactly once.
const (
	PAYOUT_STATUS_PENDING   = "pending"
	PAYOUT_STATUS_COMPLETED = "completed"
)

// Роли для API.
const (
	ROLE_SHOVELER = "shoveler"
	ROLE_CUSTOMER = "customer"
	ROLE_ADMIN    = "admin"
)

// DEFAULT_PLATFORM_FEE_RATE - доля платформы с каждого выполненного задания.
// Переопределяется переменной окружения PLATFORM_FEE_RATE.
const DEFAULT_PLATFORM_FEE_RATE = 0.10

// Ограничения на текстовые поля.
// Limits for text fields.
const (
	MAX_TAGLINE_LENGTH = 120
	MAX_NAME_LENGTH    = 100
	MAX_HANDLE_LENGTH  = 60
	MAX_ADDRESS_LENGTH = 200
)

// DEFAULT_PAYOUT_REQUESTS_PAGE_SIZE - размер страницы при выводе заявок на выплату.
const DEFAULT_PAYOUT_REQUESTS_PAGE_SIZE = 20

// DEFAULT_LEDGER_LIMIT - сколько последних записей леджера показываем админу.
const DEFAULT_LEDGER_LIMIT = 100

// MAX_LEDGER_LIMIT - верхняя граница для limit в запросах к леджеру.
const MAX_LEDGER_LIMIT = 500
