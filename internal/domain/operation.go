package domain

import "time"

type OperationType string

const (
	OperationTypeSale        OperationType = "sale"
	OperationTypeRent        OperationType = "rent"
	OperationTypeReservation OperationType = "reservation"
)

type OperationStatus string

const (
	OperationStatusOpen      OperationStatus = "open"
	OperationStatusClosed    OperationStatus = "closed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

type Operation struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"clientID"`
	ProjectID int64           `json:"projectID"`
	Type      OperationType   `json:"type"`
	Amount    int64           `json:"amount"` // 以分为单位
	Currency  string          `json:"currency"`
	Status    OperationStatus `json:"status"`
	ClosedAt  *time.Time      `json:"closedAt"`
	CreatedAt time.Time       `json:"createdAt"`
	Version   int32           `json:"-"`
}
