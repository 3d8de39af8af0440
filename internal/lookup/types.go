package lookup

import (
	"github.com/openstudio/register-gateway/pkg/enums"
	"github.com/shopspring/decimal"
)

// CustomerInput selects the registrations to show for a known customer on
// the register date.
type CustomerInput struct {
	ID        int    `json:"id"`
	GuestType string `json:"guestType,omitempty"`
	Date      string `json:"date"`
	EventList []int  `json:"eventList"`
}

// GuestInput selects the guest-list rows to show for a non-customer guest.
type GuestInput struct {
	ID          int               `json:"id"`
	GuestListID int               `json:"guestListId"`
	ModelType   string            `json:"modelType"`
	Date        string            `json:"date"`
	EventList   []int             `json:"eventList"`
	CheckinType enums.CheckinType `json:"checkinType"`
}

// CustomerRow is one per-event registration status row for a customer.
type CustomerRow struct {
	ID                  int              `json:"id"`
	CheckedIn           bool             `json:"checkedIn"`
	OccurrenceID        int              `json:"occurrenceId"`
	OccurrenceStartTime string           `json:"occurrenceStartTime,omitempty"`
	DropIn              bool             `json:"dropIn"`
	Role                Role             `json:"role"`
	Event               Event            `json:"event"`
	Registration        RegistrationInfo `json:"registration"`
}

type Role struct {
	Name string `json:"name,omitempty"`
}

type Event struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RegistrationInfo summarizes the registration and its invoice for the
// status column.
type RegistrationInfo struct {
	Student bool        `json:"student"`
	URL     string      `json:"url,omitempty"`
	Invoice InvoiceInfo `json:"invoice"`
}

type InvoiceInfo struct {
	StatusLabel        string          `json:"statusLabel"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	URL                string          `json:"url,omitempty"`
}

// GuestRow is one guest check-in row.
type GuestRow struct {
	ID           int    `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ModelType    string `json:"modelType"`
	EventID      int    `json:"eventId"`
	EventName    string `json:"eventName"`
	OccurrenceID int    `json:"occurrenceId"`
	GuestType    string `json:"guestType"`
	CheckedIn    bool   `json:"checkedIn"`
}

// GuestResult wraps the guest rows the server returns per event.
type GuestResult struct {
	Events []GuestRow `json:"events"`
}
