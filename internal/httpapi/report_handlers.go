package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"painel.org/internal/auth"
	"painel.org/internal/report"
)

const dateLayout = "02/01/2006"

func (a *API) handleFixedCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	rows, err := a.reports.FixedCosts(r.Context(), period)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleInboundInvoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	rows, err := a.reports.InboundInvoices(r.Context(), period)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleProduction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}
	rows, err := a.reports.Production(r.Context(), start, end)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleShipments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}
	rows, err := a.reports.Shipments(r.Context(), start, end)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleStockMovements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	rows, err := a.reports.StockMovements(r.Context(), period, r.URL.Query().Get("project"))
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handlePayroll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	rows, err := a.reports.Payroll(r.Context(), period)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleRequisitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	rows, err := a.reports.Requisitions(r.Context(), period)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleInvoiceEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	rows, err := a.reports.InvoiceEntries(r.Context(), period)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, rows)
}

func (a *API) handleProjectClosing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermReportsRead) {
		return
	}
	project := strings.TrimSpace(r.URL.Query().Get("project"))
	if project == "" {
		writeError(w, r, http.StatusBadRequest, "project is required")
		return
	}
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}
	closing, err := a.reports.ProjectClosing(r.Context(), project, start, end)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, closing)
}

func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermCRMRead) {
		return
	}
	customers, err := a.reports.Customers(r.Context())
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, customers)
}

func (a *API) handleCustomerResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermCRMRead) {
		return
	}
	taxID := strings.TrimPrefix(r.URL.Path, "/v1/crm/customers/")
	if taxID == "" || strings.Contains(taxID, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	customer, err := a.reports.Customer(r.Context(), taxID)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (a *API) handleIntakeSheets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermCRMRead) {
		return
	}
	sheets, err := a.reports.IntakeSheets(r.Context())
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, sheets)
}

func (a *API) handleStates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermCRMRead) {
		return
	}
	states, err := a.reports.States(r.Context())
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, states)
}

func (a *API) handleCityResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermCRMRead) {
		return
	}
	state := strings.TrimPrefix(r.URL.Path, "/v1/crm/cities/")
	if state == "" || strings.Contains(state, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	cities, err := a.reports.CitiesByState(r.Context(), state)
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, cities)
}

func (a *API) handleSiteTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, auth.PermCRMRead) {
		return
	}
	types, err := a.reports.SiteTypes(r.Context())
	if err != nil {
		handleReportError(w, r, err)
		return
	}
	writeRows(w, types)
}

// --- query parsing ---

// parsePeriod reads the year and month query parameters. Range checks live
// in report.Period.Validate; this only rejects non-integers and absence.
func parsePeriod(w http.ResponseWriter, r *http.Request) (report.Period, bool) {
	q := r.URL.Query()
	yearStr := strings.TrimSpace(q.Get("year"))
	monthStr := strings.TrimSpace(q.Get("month"))
	if yearStr == "" || monthStr == "" {
		writeError(w, r, http.StatusBadRequest, "year and month are required")
		return report.Period{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "year must be an integer")
		return report.Period{}, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "month must be an integer")
		return report.Period{}, false
	}
	return report.Period{Year: year, Month: month}, true
}

// parseDateRange reads start and end in DD/MM/YYYY, the format the frontend
// has always sent.
func parseDateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	startStr := strings.TrimSpace(q.Get("start"))
	endStr := strings.TrimSpace(q.Get("end"))
	if startStr == "" || endStr == "" {
		writeError(w, r, http.StatusBadRequest, "start and end are required")
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "start must be DD/MM/YYYY")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "end must be DD/MM/YYYY")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// writeRows always responds with a JSON array, never null.
func writeRows[T any](w http.ResponseWriter, rows []T) {
	if rows == nil {
		rows = []T{}
	}
	writeJSON(w, http.StatusOK, rows)
}
