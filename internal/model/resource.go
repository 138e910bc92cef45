package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Resource is any upstream record the console lists in a table.
type Resource interface {
	ResourceID() string
}

// Contract with a flight, hotel or visa supplier.
type Contract struct {
	ID          int64           `json:"id"`
	Reference   string          `json:"reference"`
	Supplier    string          `json:"supplier"`
	ServiceType string          `json:"service_type"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Value       decimal.Decimal `json:"value"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
}

func (c Contract) ResourceID() string { return strconv.FormatInt(c.ID, 10) }

type BankBalance struct {
	ID            int64           `json:"id"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (b BankBalance) ResourceID() string { return strconv.FormatInt(b.ID, 10) }

type Document struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	OwnerName  string    `json:"owner_name"`
	FileName   string    `json:"file_name"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (d Document) ResourceID() string { return strconv.FormatInt(d.ID, 10) }

type Budget struct {
	ID         int64           `json:"id"`
	Department string          `json:"department"`
	FiscalYear int             `json:"fiscal_year"`
	Currency   string          `json:"currency"`
	Allocated  decimal.Decimal `json:"allocated"`
	Spent      decimal.Decimal `json:"spent"`
}

func (b Budget) ResourceID() string { return strconv.FormatInt(b.ID, 10) }

// Remaining returns Allocated - Spent.
func (b Budget) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Spent)
}
