package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldDate       = "date"
	FieldCategory   = "category"
	FieldAmount     = "amount_cents"
	FieldTarget     = "target_cents"
	FieldPercentage = "percentage"
	FieldSeverity   = "severity"
	FieldAlertKind  = "alert_kind"
	FieldCount      = "count"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldTestMode   = "test_mode"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentAPI     = "api"
	ComponentYNAB    = "ynab"
	ComponentStorage = "storage"
	ComponentTrend   = "trend"
	ComponentAlert   = "alert"
	ComponentReport  = "report"
	ComponentMail    = "mail"
	ComponentNotify  = "notify"
	ComponentRun     = "run"
)

// Operations defines standard operation names
const (
	OpFetch    = "fetch"
	OpUpsert   = "upsert"
	OpQuery    = "query"
	OpAnalyze  = "analyze"
	OpEvaluate = "evaluate"
	OpRender   = "render"
	OpExport   = "export"
	OpSend     = "send"
	OpPublish  = "publish"
	OpCleanup  = "cleanup"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
