package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de registro financiero.
const (
	FinanceIncome  = "ingreso"
	FinanceExpense = "egreso"
)

// FinanceRecord ingreso o egreso, opcionalmente asociado a un cultivo.
type FinanceRecord struct {
	ID        string
	Type      string
	Concept   string
	Amount    decimal.Decimal
	Date      time.Time
	CropID    string
	UserID    string
	CreatedAt time.Time
}
