package report

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidQuery marks locally generated parameter validation failures.
	ErrInvalidQuery = errors.New("report: invalid query")

	// ErrSourceUnavailable is returned when the backing database for a
	// report was not configured at startup.
	ErrSourceUnavailable = errors.New("report: data source unavailable")

	// ErrNotFound is returned for single-row lookups with no match.
	ErrNotFound = errors.New("report: not found")
)

// Period selects one calendar month.
type Period struct {
	Year  int
	Month int
}

// Validate bounds the period the same way the query layer always has:
// years from 2000 through the current year, months 1 through 12.
func (p Period) Validate() error {
	if p.Year < 2000 || p.Year > time.Now().Year() {
		return fmt.Errorf("%w: year must be between 2000 and %d", ErrInvalidQuery, time.Now().Year())
	}
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidQuery)
	}
	return nil
}

// Bounds returns the first and last day of the period as DD/MM/YYYY strings,
// the format the plant-floor APIs and the ERP date filters expect.
func (p Period) Bounds() (string, string) {
	first := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("02/01/2006"), last.Format("02/01/2006")
}

// FixedCostRow is one line of the monthly fixed-cost report.
type FixedCostRow struct {
	RowID       int64     `json:"id"`
	ProjectCode string    `json:"project_code"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	Group       string    `json:"group"`
	Quantity    float64   `json:"quantity"`
	UnitValue   float64   `json:"unit_value"`
	TotalValue  float64   `json:"total_value"`
	InvoiceNo   string    `json:"invoice_number"`
	IssuedAt    time.Time `json:"issued_at"`
}

// InboundInvoiceRow is one line of the inbound invoice report.
type InboundInvoiceRow struct {
	RowID       int64     `json:"id"`
	ProjectCode string    `json:"project_code"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	GroupID     string    `json:"group_id"`
	Group       string    `json:"group"`
	Quantity    float64   `json:"quantity"`
	TotalValue  float64   `json:"total_value"`
	InvoiceNo   string    `json:"invoice_number"`
	IssuedAt    time.Time `json:"issued_at"`
	ReceivedAt  time.Time `json:"received_at"`
}

// ProductionRow is one produced piece in a date range.
type ProductionRow struct {
	RowID       int64     `json:"id"`
	ProjectCode string    `json:"project_code"`
	PieceCode   string    `json:"piece_code"`
	Description string    `json:"description"`
	Weight      float64   `json:"weight"`
	ProducedAt  time.Time `json:"produced_at"`
}

// ShipmentRow is one shipped piece in a date range.
type ShipmentRow struct {
	RowID       int64     `json:"id"`
	ProjectCode string    `json:"project_code"`
	LoadNumber  string    `json:"load_number"`
	PieceCode   string    `json:"piece_code"`
	Weight      float64   `json:"weight"`
	ShippedAt   time.Time `json:"shipped_at"`
}

// StockMovementRow is one warehouse movement.
type StockMovementRow struct {
	RowID       int64     `json:"id"`
	ProjectCode string    `json:"project_code"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Direction   string    `json:"direction"`
	MovedAt     time.Time `json:"moved_at"`
}

// PayrollRow aggregates one employee's hours for a month, sourced from the
// payroll warehouse.
type PayrollRow struct {
	EmployeeID   int64   `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	CostCenter   string  `json:"cost_center"`
	RegularHours float64 `json:"regular_hours"`
	ExtraHours   float64 `json:"extra_hours"`
}

// RequisitionRow is one warehouse requisition issue line: material drawn
// from stock against a project, with its ledger account and average cost.
type RequisitionRow struct {
	RowID         int64     `json:"id"`
	RequisitionID int64     `json:"requisition_id"`
	BranchID      int64     `json:"branch_id"`
	IssuedAt      time.Time `json:"issued_at"`
	Reference     string    `json:"reference"`
	Description   string    `json:"description"`
	Unit          string    `json:"unit"`
	QuantityUsed  float64   `json:"quantity_used"`
	AverageCost   float64   `json:"average_cost"`
	LedgerAccount int64     `json:"ledger_account"`
	ProjectCode   string    `json:"project_code"`
	ProjectName   string    `json:"project_name"`
	GroupID       string    `json:"group_id"`
	Group         string    `json:"group"`
}

// InvoiceEntryRow is one accounting ledger entry behind an inbound invoice,
// the view the accounting team reconciles monthly.
type InvoiceEntryRow struct {
	RowID        int64     `json:"id"`
	BranchID     int64     `json:"branch_id"`
	InvoiceID    int64     `json:"invoice_id"`
	InvoiceNo    string    `json:"invoice_number"`
	Series       string    `json:"series"`
	IssuedAt     time.Time `json:"issued_at"`
	ReceivedAt   time.Time `json:"received_at"`
	ProjectCode  string    `json:"project_code"`
	ProjectName  string    `json:"project_name"`
	SupplierName string    `json:"supplier_name"`
	DebitAccount int64     `json:"debit_account"`
	AccountName  string    `json:"account_name"`
	AccountClass string    `json:"account_class"`
	Value        float64   `json:"value"`
}

// ClosingHeader identifies the project a closing report covers.
type ClosingHeader struct {
	ProjectID   int64  `json:"project_id"`
	ProjectCode string `json:"project_code"`
	ProjectName string `json:"project_name"`
	Customer    string `json:"customer"`
}

// ClosingItemGroup is one item aggregated across a project's outbound or
// return invoices.
type ClosingItemGroup struct {
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	Group       string  `json:"group"`
	Quantity    float64 `json:"quantity"`
	UnitValue   float64 `json:"unit_value"`
	TotalValue  float64 `json:"total_value"`
}

// ClosingInvoiceTotal is one invoice-level total inside a closing report.
type ClosingInvoiceTotal struct {
	InvoiceNo  string    `json:"invoice_number"`
	CFOP       int       `json:"cfop"`
	IssuedAt   time.Time `json:"issued_at"`
	TotalValue float64   `json:"total_value"`
}

// ProjectClosingReport is the composite document handed to the finance team
// when a project wraps up: what shipped, what came back, invoice totals, and
// contracted vs. received money.
type ProjectClosingReport struct {
	Project         ClosingHeader         `json:"project"`
	Shipments       []ClosingItemGroup    `json:"shipments"`
	Returns         []ClosingItemGroup    `json:"returns"`
	InvoiceTotals   []ClosingInvoiceTotal `json:"invoice_totals"`
	ContractedValue float64               `json:"contracted_value"`
	ReceivedTotal   float64               `json:"received_total"`
}

// City is one municipality from the legacy CRM location table.
type City struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// SiteType is one construction site category from the legacy CRM store.
type SiteType struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// Customer is a CRM customer record.
type Customer struct {
	TaxID   string `json:"tax_id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	State   string `json:"state"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// IntakeSheet is one commercial intake sheet from the legacy CRM store.
type IntakeSheet struct {
	ID        int64  `json:"id"`
	Revision  int    `json:"revision"`
	Quote     string `json:"quote"`
	Customer  string `json:"customer"`
	SiteName  string `json:"site_name"`
	EnteredAt string `json:"entered_at"`
	Status    string `json:"status"`
}
