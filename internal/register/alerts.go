package register

import (
	"github.com/google/uuid"
	"github.com/openstudio/register-gateway/pkg/enums"
)

// Alert is one dismissible message shown in the register's alert panel.
type Alert struct {
	ID      string           `json:"id"`
	Level   enums.AlertLevel `json:"level"`
	Message string           `json:"message"`
}

func newAlert(level enums.AlertLevel, message string) Alert {
	return Alert{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
	}
}
