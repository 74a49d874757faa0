package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service executes the parameterized report queries. Each report maps to one
// statement against one of the backing databases; there is no shared state
// and no caching, concurrency discipline is the pool's.
type Service struct {
	erp     *sql.DB
	payroll *sql.DB
	crm     *sql.DB
}

// NewService wires the three data sources. Any of them may be nil, in which
// case the reports it backs return ErrSourceUnavailable.
func NewService(erp, payroll, crm *sql.DB) *Service {
	return &Service{erp: erp, payroll: payroll, crm: crm}
}

// FixedCosts lists fixed-cost invoice items for one month. The group filter
// matches the fixed-cost accounting groups used by the finance team.
func (s *Service) FixedCosts(ctx context.Context, p Period) ([]FixedCostRow, error) {
	if s.erp == nil {
		return nil, ErrSourceUnavailable
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.erp.QueryContext(ctx, `
		select row_number() over() as row_id,
		       n.project_code, i.reference, i.description, g.description as grp,
		       ni.quantity, ni.unit_value, ni.total_value, n.invoice_number, n.issued_at
		from invoice_items ni
		join items i on i.item_id = ni.item_id
		join invoices n on n.invoice_id = ni.invoice_id
		join item_groups g on g.group_id = i.group_id
		where extract(year from n.issued_at) = $1
		  and extract(month from n.issued_at) = $2
		  and g.group_id = any($3)
		  and n.status = '2'`,
		p.Year, p.Month, fixedCostGroups)
	if err != nil {
		return nil, fmt.Errorf("query fixed costs: %w", err)
	}
	defer rows.Close()

	var res []FixedCostRow
	for rows.Next() {
		var r FixedCostRow
		if err := rows.Scan(&r.RowID, &r.ProjectCode, &r.Reference, &r.Description,
			&r.Group, &r.Quantity, &r.UnitValue, &r.TotalValue, &r.InvoiceNo, &r.IssuedAt); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// fixedCostGroups mirrors the accounting group ids the finance team tracks
// as fixed cost.
var fixedCostGroups = "{143,161,162,163,164,165,166,167}"

// InboundInvoices lists received invoice items for one month.
func (s *Service) InboundInvoices(ctx context.Context, p Period) ([]InboundInvoiceRow, error) {
	if s.erp == nil {
		return nil, ErrSourceUnavailable
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.erp.QueryContext(ctx, `
		select row_number() over() as row_id,
		       e.project_code, i.reference, i.description, g.group_id, g.description as grp,
		       ei.quantity, ei.total_value, e.invoice_number, e.issued_at, e.received_at
		from inbound_invoice_items ei
		join items i on i.item_id = ei.item_id
		join inbound_invoices e on e.invoice_id = ei.invoice_id
		join item_groups g on g.group_id = i.group_id
		where extract(year from e.issued_at) = $1
		  and extract(month from e.issued_at) = $2`,
		p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("query inbound invoices: %w", err)
	}
	defer rows.Close()

	var res []InboundInvoiceRow
	for rows.Next() {
		var r InboundInvoiceRow
		if err := rows.Scan(&r.RowID, &r.ProjectCode, &r.Reference, &r.Description,
			&r.GroupID, &r.Group, &r.Quantity, &r.TotalValue, &r.InvoiceNo, &r.IssuedAt, &r.ReceivedAt); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Production lists pieces produced inside the date range.
func (s *Service) Production(ctx context.Context, start, end time.Time) ([]ProductionRow, error) {
	if s.erp == nil {
		return nil, ErrSourceUnavailable
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	rows, err := s.erp.QueryContext(ctx, `
		select row_number() over() as row_id,
		       p.project_code, p.piece_code, p.description, p.weight, p.produced_at
		from production p
		where p.produced_at >= $1 and p.produced_at <= $2
		order by p.produced_at asc`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("query production: %w", err)
	}
	defer rows.Close()

	var res []ProductionRow
	for rows.Next() {
		var r ProductionRow
		if err := rows.Scan(&r.RowID, &r.ProjectCode, &r.PieceCode, &r.Description,
			&r.Weight, &r.ProducedAt); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Shipments lists pieces shipped inside the date range.
func (s *Service) Shipments(ctx context.Context, start, end time.Time) ([]ShipmentRow, error) {
	if s.erp == nil {
		return nil, ErrSourceUnavailable
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	rows, err := s.erp.QueryContext(ctx, `
		select row_number() over() as row_id,
		       sh.project_code, sh.load_number, sh.piece_code, sh.weight, sh.shipped_at
		from shipments sh
		where sh.shipped_at >= $1 and sh.shipped_at <= $2
		order by sh.shipped_at asc`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("query shipments: %w", err)
	}
	defer rows.Close()

	var res []ShipmentRow
	for rows.Next() {
		var r ShipmentRow
		if err := rows.Scan(&r.RowID, &r.ProjectCode, &r.LoadNumber, &r.PieceCode,
			&r.Weight, &r.ShippedAt); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// StockMovements lists warehouse movements for one month, optionally scoped
// to a project.
func (s *Service) StockMovements(ctx context.Context, p Period, project string) ([]StockMovementRow, error) {
	if s.erp == nil {
		return nil, ErrSourceUnavailable
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	project = strings.TrimSpace(project)

	query := `
		select row_number() over() as row_id,
		       m.project_code, i.reference, i.description, m.quantity, m.direction, m.moved_at
		from stock_movements m
		join items i on i.item_id = m.item_id
		where extract(year from m.moved_at) = $1
		  and extract(month from m.moved_at) = $2`
	args := []any{p.Year, p.Month}
	if project != "" {
		query += ` and m.project_code = $3`
		args = append(args, project)
	}
	rows, err := s.erp.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stock movements: %w", err)
	}
	defer rows.Close()

	var res []StockMovementRow
	for rows.Next() {
		var r StockMovementRow
		if err := rows.Scan(&r.RowID, &r.ProjectCode, &r.Reference, &r.Description,
			&r.Quantity, &r.Direction, &r.MovedAt); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Payroll aggregates employee hours for one month from the payroll warehouse.
func (s *Service) Payroll(ctx context.Context, p Period) ([]PayrollRow, error) {
	if s.payroll == nil {
		return nil, ErrSourceUnavailable
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.payroll.QueryContext(ctx, `
		select e.employee_id, e.name, e.cost_center,
		       coalesce(sum(h.regular_hours), 0), coalesce(sum(h.extra_hours), 0)
		from employees e
		join hours h on h.employee_id = e.employee_id
		where extract(year from h.worked_on) = $1
		  and extract(month from h.worked_on) = $2
		group by e.employee_id, e.name, e.cost_center
		order by e.name asc`,
		p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("query payroll: %w", err)
	}
	defer rows.Close()

	var res []PayrollRow
	for rows.Next() {
		var r PayrollRow
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeName, &r.CostCenter,
			&r.RegularHours, &r.ExtraHours); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Requisitions lists warehouse requisition issues for one month: material
// drawn from stock against projects, with ledger account and average cost.
func (s *Service) Requisitions(ctx context.Context, p Period) ([]RequisitionRow, error) {
	if s.erp == nil {
		return nil, ErrSourceUnavailable
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.erp.QueryContext(ctx, `
		select row_number() over() as row_id,
		       rq.requisition_id, rq.branch_id, rq.issued_at,
		       i.reference, i.description, u.symbol as unit,
		       ri.quantity_used, ri.average_cost, rq.ledger_account,
		       rq.project_code, p.name as project_name,
		       g.group_id, g.description as grp
		from requisition_items ri
		join requisitions rq on rq.requisition_id = ri.requisition_id
		join items i on i.item_id = ri.item_id
		join units u on u.unit_id = i.unit_id
		join item_groups g on g.group_id = i.group_id
		join projects p on p.code = rq.project_code
		where extract(year from rq.issued_at) = $1
		  and extract(month from rq.issued_at) = $2
		order by rq.branch_id, rq.issued_at, rq.requisition_id`,
		p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("query requisitions: %w", err)
	}
	defer rows.Close()

	var res []RequisitionRow
	for rows.Next() {
		var r RequisitionRow
		if err := rows.Scan(&r.RowID, &r.RequisitionID, &r.BranchID, &r.IssuedAt,
			&r.Reference, &r.Description, &r.Unit, &r.QuantityUsed, &r.AverageCost,
			&r.LedgerAccount, &r.ProjectCode, &r.ProjectName, &r.GroupID, &r.Group); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// invoiceEntryTransactions mirrors the ERP transaction codes whose ledger
// entries the accounting team reconciles.
var invoiceEntryTransactions = "{5,10,11,33,37,38,47,48,49,50,51,52,53,54,55,56,57,58,59,60,61,65,68,72,85,86,87,91,97,99,101}"

// InvoiceEntries lists the accounting ledger entries behind inbound invoices
// for one month. Only invoice-sourced entries with a debit account qualify.
func (s *Service) InvoiceEntries(ctx context.Context, p Period) ([]InvoiceEntryRow, error) {
	if s.erp == nil {
		return nil, ErrSourceUnavailable
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.erp.QueryContext(ctx, `
		select row_number() over() as row_id,
		       e.branch_id, e.invoice_id, e.invoice_number, e.series,
		       e.issued_at, e.received_at,
		       e.project_code, p.name as project_name, sp.trade_name,
		       l.debit_account, coalesce(a.description, ''), coalesce(a.classification, ''),
		       l.value
		from ledger_entries l
		join inbound_invoices e on e.invoice_id = l.document_id and e.branch_id = l.branch_id
		join projects p on p.code = e.project_code
		join suppliers sp on sp.supplier_id = e.supplier_id
		left join chart_of_accounts a on a.account_id = l.debit_account
		where l.source = 2
		  and l.debit_account > 0
		  and extract(year from e.received_at) = $1
		  and extract(month from e.received_at) = $2
		  and e.transaction_id = any($3)`,
		p.Year, p.Month, invoiceEntryTransactions)
	if err != nil {
		return nil, fmt.Errorf("query invoice entries: %w", err)
	}
	defer rows.Close()

	var res []InvoiceEntryRow
	for rows.Next() {
		var r InvoiceEntryRow
		if err := rows.Scan(&r.RowID, &r.BranchID, &r.InvoiceID, &r.InvoiceNo, &r.Series,
			&r.IssuedAt, &r.ReceivedAt, &r.ProjectCode, &r.ProjectName, &r.SupplierName,
			&r.DebitAccount, &r.AccountName, &r.AccountClass, &r.Value); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Customers lists CRM customers from the legacy snapshot.
func (s *Service) Customers(ctx context.Context) ([]Customer, error) {
	if s.crm == nil {
		return nil, ErrSourceUnavailable
	}
	rows, err := s.crm.QueryContext(ctx, `
		select tax_id, name, city, state, phone, email, contact
		from customers order by name asc`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var res []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.TaxID, &c.Name, &c.City, &c.State, &c.Phone, &c.Email, &c.Contact); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// Customer looks a single CRM customer up by tax id.
func (s *Service) Customer(ctx context.Context, taxID string) (*Customer, error) {
	if s.crm == nil {
		return nil, ErrSourceUnavailable
	}
	taxID = strings.TrimSpace(taxID)
	if taxID == "" {
		return nil, fmt.Errorf("%w: tax id is required", ErrInvalidQuery)
	}
	row := s.crm.QueryRowContext(ctx, `
		select tax_id, name, city, state, phone, email, contact
		from customers where tax_id = ?`, taxID)
	var c Customer
	if err := row.Scan(&c.TaxID, &c.Name, &c.City, &c.State, &c.Phone, &c.Email, &c.Contact); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// IntakeSheets lists the commercial intake sheets from the legacy CRM store.
func (s *Service) IntakeSheets(ctx context.Context) ([]IntakeSheet, error) {
	if s.crm == nil {
		return nil, ErrSourceUnavailable
	}
	rows, err := s.crm.QueryContext(ctx, `
		select sheet_id, revision, quote, customer, site_name, entered_at, status
		from intake_sheets order by sheet_id desc`)
	if err != nil {
		return nil, fmt.Errorf("query intake sheets: %w", err)
	}
	defer rows.Close()

	var res []IntakeSheet
	for rows.Next() {
		var sheet IntakeSheet
		if err := rows.Scan(&sheet.ID, &sheet.Revision, &sheet.Quote, &sheet.Customer,
			&sheet.SiteName, &sheet.EnteredAt, &sheet.Status); err != nil {
			return nil, err
		}
		res = append(res, sheet)
	}
	return res, rows.Err()
}

// States lists the states that have at least one CRM city.
func (s *Service) States(ctx context.Context) ([]string, error) {
	if s.crm == nil {
		return nil, ErrSourceUnavailable
	}
	rows, err := s.crm.QueryContext(ctx, `
		select distinct state from cities order by state asc`)
	if err != nil {
		return nil, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, err
		}
		res = append(res, state)
	}
	return res, rows.Err()
}

// CitiesByState lists the CRM cities of one state.
func (s *Service) CitiesByState(ctx context.Context, state string) ([]City, error) {
	if s.crm == nil {
		return nil, ErrSourceUnavailable
	}
	state = strings.TrimSpace(state)
	if state == "" {
		return nil, fmt.Errorf("%w: state is required", ErrInvalidQuery)
	}
	rows, err := s.crm.QueryContext(ctx, `
		select city_id, name, state from cities where state = ? order by name asc`, state)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var res []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.State); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// SiteTypes lists the selectable construction site categories. Type 11 is an
// internal placeholder row in the legacy store and is never offered.
func (s *Service) SiteTypes(ctx context.Context) ([]SiteType, error) {
	if s.crm == nil {
		return nil, ErrSourceUnavailable
	}
	rows, err := s.crm.QueryContext(ctx, `
		select type_id, description from site_types where type_id not in (11) order by type_id asc`)
	if err != nil {
		return nil, fmt.Errorf("query site types: %w", err)
	}
	defer rows.Close()

	var res []SiteType
	for rows.Next() {
		var st SiteType
		if err := rows.Scan(&st.ID, &st.Description); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, rows.Err()
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidQuery)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidQuery)
	}
	return nil
}
