package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Accounting filters for the closing report. Shipments and returns only
// count the two structural-product groups, and only invoices in the fiscal
// operation codes the finance team reconciles project revenue under.
var (
	closingGroups        = "{143,163}"
	closingShipmentCFOPs = "{5101,6101,6922,5922,5107,6107,5949,6949,5116,6116}"
	closingReturnCFOPs   = "{1949,2949,1201,1101,2201,1107,1207,2107,2207}"
	closingInvoiceCFOPs  = "{5101,6101,6922,5922,5107,6107,5949,6949}"
)

// ProjectClosing assembles the closing document for one project: header,
// shipped and returned items aggregated per reference, invoice totals, and
// contracted vs. received money. The heaviest report in the service; every
// section is its own query against the ERP pool.
func (s *Service) ProjectClosing(ctx context.Context, projectCode string, start, end time.Time) (*ProjectClosingReport, error) {
	if s.erp == nil {
		return nil, ErrSourceUnavailable
	}
	projectCode = strings.TrimSpace(projectCode)
	if projectCode == "" {
		return nil, fmt.Errorf("%w: project is required", ErrInvalidQuery)
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	header, err := s.closingHeader(ctx, projectCode)
	if err != nil {
		return nil, err
	}

	report := &ProjectClosingReport{Project: *header}

	report.Shipments, err = s.closingItems(ctx, `
		select i.reference, max(i.description), g.description as grp,
		       coalesce(sum(oi.quantity), 0),
		       coalesce(sum(oi.total_value) / nullif(sum(oi.quantity), 0), 0),
		       coalesce(sum(oi.total_value), 0)
		from outbound_invoice_items oi
		join items i on i.item_id = oi.item_id
		join item_groups g on g.group_id = i.group_id
		join outbound_invoices o on o.invoice_id = oi.invoice_id
		where g.group_id = any($4)
		  and o.status = '2'
		  and o.cfop = any($5)
		  and o.project_code = $1
		  and o.issued_at between $2 and $3
		group by i.reference, g.description`,
		projectCode, start, end, closingGroups, closingShipmentCFOPs)
	if err != nil {
		return nil, fmt.Errorf("query closing shipments: %w", err)
	}

	report.Returns, err = s.closingItems(ctx, `
		select i.reference, max(i.description), g.description as grp,
		       coalesce(sum(ei.quantity), 0),
		       coalesce(sum(ei.total_value) / nullif(sum(ei.quantity), 0), 0),
		       coalesce(sum(ei.total_value), 0)
		from inbound_invoice_items ei
		join items i on i.item_id = ei.item_id
		join item_groups g on g.group_id = i.group_id
		join inbound_invoices e on e.invoice_id = ei.invoice_id
		where g.group_id = any($4)
		  and e.status = '2'
		  and e.cfop = any($5)
		  and e.project_code = $1
		  and e.issued_at between $2 and $3
		group by i.reference, g.description`,
		projectCode, start, end, closingGroups, closingReturnCFOPs)
	if err != nil {
		return nil, fmt.Errorf("query closing returns: %w", err)
	}

	report.InvoiceTotals, err = s.closingInvoiceTotals(ctx, projectCode, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.erp.QueryRowContext(ctx, `
		select coalesce(contracted_value, 0) from projects where code = $1`,
		projectCode).Scan(&report.ContractedValue); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query contracted value: %w", err)
	}

	if err := s.erp.QueryRowContext(ctx, `
		select coalesce(sum(amount), 0)
		from project_receipts
		where project_code = $1 and voided = false`,
		projectCode).Scan(&report.ReceivedTotal); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("query received total: %w", err)
	}

	return report, nil
}

func (s *Service) closingHeader(ctx context.Context, projectCode string) (*ClosingHeader, error) {
	row := s.erp.QueryRowContext(ctx, `
		select p.project_id, p.code, p.name, c.legal_name
		from projects p
		join customers c on c.customer_id = p.customer_id
		where p.code = $1`,
		projectCode)
	var h ClosingHeader
	if err := row.Scan(&h.ProjectID, &h.ProjectCode, &h.ProjectName, &h.Customer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query closing header: %w", err)
	}
	return &h, nil
}

func (s *Service) closingItems(ctx context.Context, query string, args ...any) ([]ClosingItemGroup, error) {
	rows, err := s.erp.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ClosingItemGroup
	for rows.Next() {
		var g ClosingItemGroup
		if err := rows.Scan(&g.Reference, &g.Description, &g.Group,
			&g.Quantity, &g.UnitValue, &g.TotalValue); err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

func (s *Service) closingInvoiceTotals(ctx context.Context, projectCode string, start, end time.Time) ([]ClosingInvoiceTotal, error) {
	rows, err := s.erp.QueryContext(ctx, `
		select o.invoice_number, o.cfop, o.issued_at, coalesce(sum(oi.total_value), 0)
		from outbound_invoice_items oi
		join items i on i.item_id = oi.item_id
		join item_groups g on g.group_id = i.group_id
		join outbound_invoices o on o.invoice_id = oi.invoice_id
		where g.group_id = any($4)
		  and o.status = '2'
		  and o.cfop = any($5)
		  and o.project_code = $1
		  and o.issued_at between $2 and $3
		group by o.invoice_number, o.cfop, o.issued_at
		order by o.issued_at asc`,
		projectCode, start, end, closingGroups, closingInvoiceCFOPs)
	if err != nil {
		return nil, fmt.Errorf("query closing invoice totals: %w", err)
	}
	defer rows.Close()

	var res []ClosingInvoiceTotal
	for rows.Next() {
		var t ClosingInvoiceTotal
		if err := rows.Scan(&t.InvoiceNo, &t.CFOP, &t.IssuedAt, &t.TotalValue); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}
