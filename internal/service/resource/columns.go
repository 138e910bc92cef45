package resource

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jwalitptl/travel-console/internal/model"
	"github.com/jwalitptl/travel-console/pkg/table"
)

const (
	dateLayout     = "02 Jan 2006"
	dateTimeLayout = "02 Jan 2006 15:04"
)

// Formatter renders amounts for one display locale.
type Formatter struct {
	printer *message.Printer
}

func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Money renders an amount with grouping and two decimals, prefixed by the
// currency code.
func (f *Formatter) Money(amount decimal.Decimal, currency string) string {
	value := f.printer.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
	if currency == "" {
		return value
	}
	return currency + " " + value
}

// DecimalField builds a sortable money column.
func DecimalField[T any](key, header string, get func(T) decimal.Decimal, currency func(T) string, f *Formatter) table.Column[T] {
	return table.Column[T]{
		Key:      key,
		Header:   header,
		Value:    func(row T) any { return get(row) },
		Render:   func(row T) string { return f.Money(get(row), currency(row)) },
		Sortable: true,
		Compare:  func(a, b T) int { return get(a).Cmp(get(b)) },
	}
}

func ContractColumns(f *Formatter) []table.Column[model.Contract] {
	return []table.Column[model.Contract]{
		table.Field("reference", "Reference", func(c model.Contract) string { return c.Reference }),
		table.Field("supplier", "Supplier", func(c model.Contract) string { return c.Supplier }),
		table.Text("service_type", "Service", func(c model.Contract) string { return c.ServiceType }),
		table.TimeField("start_date", "Start", func(c model.Contract) time.Time { return c.StartDate }, dateLayout),
		table.TimeField("end_date", "End", func(c model.Contract) time.Time { return c.EndDate }, dateLayout),
		DecimalField("value", "Value", func(c model.Contract) decimal.Decimal { return c.Value },
			func(c model.Contract) string { return c.Currency }, f),
		table.Field("status", "Status", func(c model.Contract) string { return c.Status }),
	}
}

func BalanceColumns(f *Formatter) []table.Column[model.BankBalance] {
	return []table.Column[model.BankBalance]{
		table.Field("bank_name", "Bank", func(b model.BankBalance) string { return b.BankName }),
		table.Text("account_number", "Account", func(b model.BankBalance) string { return b.AccountNumber }),
		table.Field("currency", "Currency", func(b model.BankBalance) string { return b.Currency }),
		DecimalField("balance", "Balance", func(b model.BankBalance) decimal.Decimal { return b.Balance },
			func(b model.BankBalance) string { return b.Currency }, f),
		table.TimeField("updated_at", "Last Updated", func(b model.BankBalance) time.Time { return b.UpdatedAt }, dateTimeLayout),
	}
}

func DocumentColumns() []table.Column[model.Document] {
	return []table.Column[model.Document]{
		table.Field("title", "Title", func(d model.Document) string { return d.Title }),
		table.Field("category", "Category", func(d model.Document) string { return d.Category }),
		table.Field("owner_name", "Owner", func(d model.Document) string { return d.OwnerName }),
		table.Text("file_name", "File", func(d model.Document) string { return d.FileName }),
		table.Field("status", "Status", func(d model.Document) string { return d.Status }),
		table.TimeField("uploaded_at", "Uploaded", func(d model.Document) time.Time { return d.UploadedAt }, dateTimeLayout),
	}
}

func BudgetColumns(f *Formatter) []table.Column[model.Budget] {
	currency := func(b model.Budget) string { return b.Currency }
	return []table.Column[model.Budget]{
		table.Field("department", "Department", func(b model.Budget) string { return b.Department }),
		table.Field("fiscal_year", "Fiscal Year", func(b model.Budget) int { return b.FiscalYear }),
		DecimalField("allocated", "Allocated", func(b model.Budget) decimal.Decimal { return b.Allocated }, currency, f),
		DecimalField("spent", "Spent", func(b model.Budget) decimal.Decimal { return b.Spent }, currency, f),
		DecimalField("remaining", "Remaining", model.Budget.Remaining, currency, f).Unsortable(),
	}
}

func ApprovalColumns() []table.Column[model.ApprovalRequest] {
	return []table.Column[model.ApprovalRequest]{
		table.Field("request_id", "Request", func(a model.ApprovalRequest) int64 { return a.RequestID }),
		table.Field("request_type", "Type", func(a model.ApprovalRequest) string { return a.RequestType }),
		table.Text("step_name", "Step", func(a model.ApprovalRequest) string { return a.StepName }),
		table.Text("required_role", "Required Role", func(a model.ApprovalRequest) string { return a.RequiredRole }),
		table.Field("creator_name", "Requested By", func(a model.ApprovalRequest) string { return a.CreatorName }),
		table.Field("status", "Status", func(a model.ApprovalRequest) string { return string(a.Status) }),
		table.TimeField("created_at", "Created", func(a model.ApprovalRequest) time.Time { return a.CreatedAt }, dateTimeLayout),
	}
}

// AuditColumns are display-only: the audit trail is always newest first.
func AuditColumns() []table.Column[model.AuditLog] {
	return []table.Column[model.AuditLog]{
		table.TimeField("created_at", "When", func(l model.AuditLog) time.Time { return l.CreatedAt }, dateTimeLayout).Unsortable(),
		table.Text("operator_id", "Operator", func(l model.AuditLog) string { return l.OperatorID.String() }),
		table.Text("action", "Action", func(l model.AuditLog) string { return l.Action }),
		table.Text("entity_type", "Entity", func(l model.AuditLog) string { return l.EntityType }),
		table.Text("entity_id", "Entity ID", func(l model.AuditLog) string { return l.EntityID }),
		table.Text("ip_address", "IP", func(l model.AuditLog) string { return l.IPAddress }),
	}
}
