package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldTxID       = "transaction_id"
	FieldKey        = "key"
	FieldBackend    = "backend"
	FieldAction     = "action"
)

// Components defines standard component names.
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentStore  = "store"
	ComponentWorker = "worker"
)
