package notify

import (
	"encoding/json"
	"time"

	"budgetwatch/internal/core"
)

// AlertMessage is the payload published for each danger alert. It carries
// everything a downstream consumer needs to render a notification without
// touching the database.
type AlertMessage struct {
	Date      string    `json:"date"`
	Category  string    `json:"category"`
	AlertType string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAlertMessage(a core.Alert) *AlertMessage {
	return &AlertMessage{
		Date:      core.DayKey(a.Date),
		Category:  a.Category,
		AlertType: string(a.Kind),
		Severity:  string(a.Severity),
		Message:   a.Message,
		Timestamp: time.Now(),
	}
}

func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
