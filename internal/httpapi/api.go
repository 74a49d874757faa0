package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"painel.org/internal/auth"
	"painel.org/internal/obs"
	"painel.org/internal/report"
	"painel.org/internal/upstream"
)

// ReadyProbe pings every configured database so /readyz reflects whether the
// aggregation layer can actually answer queries.
type ReadyProbe struct {
	DBs []*sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	for _, db := range rp.DBs {
		if db == nil {
			continue
		}
		if err := db.PingContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

type readinessChecker interface {
	Check(ctx context.Context) error
}

// Options carries everything the HTTP layer depends on, constructed once in
// main and injected here.
type Options struct {
	Auth       *auth.Service
	Reports    *report.Service
	BI         *upstream.BI
	Plannix    *upstream.Plannix
	ReadyProbe ReadyProbe
	Version    string

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	reports    *report.Service
	bi         *upstream.BI
	plannix    *upstream.Plannix
	readyProbe ReadyProbe
	version    string

	rateBurst  int
	ratePerSec int
	maxBody    int64
}

// New wires the route table.
func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       opts.Auth,
		reports:    opts.Reports,
		bi:         opts.BI,
		plannix:    opts.Plannix,
		readyProbe: opts.ReadyProbe,
		version:    opts.Version,
		rateBurst:  opts.RateBurst,
		ratePerSec: opts.RatePerSecond,
		maxBody:    opts.MaxBodyBytes,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}
	if a.maxBody <= 0 {
		a.maxBody = 1 << 20
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)

	// user administration
	a.mux.HandleFunc("/v1/users", a.handleUsers)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	// ERP / payroll reports
	a.mux.HandleFunc("/v1/reports/fixed-costs", a.handleFixedCosts)
	a.mux.HandleFunc("/v1/reports/inbound-invoices", a.handleInboundInvoices)
	a.mux.HandleFunc("/v1/reports/production", a.handleProduction)
	a.mux.HandleFunc("/v1/reports/shipments", a.handleShipments)
	a.mux.HandleFunc("/v1/reports/stock-movements", a.handleStockMovements)
	a.mux.HandleFunc("/v1/reports/payroll", a.handlePayroll)
	a.mux.HandleFunc("/v1/reports/requisitions", a.handleRequisitions)
	a.mux.HandleFunc("/v1/reports/invoice-entries", a.handleInvoiceEntries)
	a.mux.HandleFunc("/v1/reports/project-closing", a.handleProjectClosing)

	// legacy CRM
	a.mux.HandleFunc("/v1/crm/customers", a.handleCustomers)
	a.mux.HandleFunc("/v1/crm/customers/", a.handleCustomerResource)
	a.mux.HandleFunc("/v1/crm/intake-sheets", a.handleIntakeSheets)
	a.mux.HandleFunc("/v1/crm/states", a.handleStates)
	a.mux.HandleFunc("/v1/crm/cities/", a.handleCityResource)
	a.mux.HandleFunc("/v1/crm/site-types", a.handleSiteTypes)

	// plant-floor upstreams
	a.mux.HandleFunc("/v1/plant/shipped-loads", a.handleShippedLoads)
	a.mux.HandleFunc("/v1/plant/projected-pieces", a.handleProjectedPieces)
	a.mux.HandleFunc("/v1/plant/sites", a.handleSites)
	a.mux.HandleFunc("/v1/plant/production", a.handlePlantProduction)
	a.mux.HandleFunc("/v1/plant/assembly", a.handlePlantAssembly)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.withAuth(a.mux)
	h = obs.Instrument(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, a.maxBody)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return h
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "painel-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "painel-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
