package shared

// Background task types
const (
	TypeImportWrite = "import:write"
)

// Queue names
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// ImportWritePayload asks the worker to run the write phase of a confirmed import
type ImportWritePayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}
