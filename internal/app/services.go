package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-pos/internal/audit"
	audithttp "github.com/odyssey-erp/odyssey-pos/internal/audit/http"
	"github.com/odyssey-erp/odyssey-pos/internal/auth"
	"github.com/odyssey-erp/odyssey-pos/internal/billing"
	"github.com/odyssey-erp/odyssey-pos/internal/cart"
	"github.com/odyssey-erp/odyssey-pos/internal/catalog"
	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/expenses"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
	"github.com/odyssey-erp/odyssey-pos/internal/payroll"
	"github.com/odyssey-erp/odyssey-pos/internal/rbac"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/snapshot"
	"github.com/odyssey-erp/odyssey-pos/internal/tenants"
	"github.com/odyssey-erp/odyssey-pos/internal/users"
	"github.com/odyssey-erp/odyssey-pos/internal/view"
	"github.com/odyssey-erp/odyssey-pos/jobs"
	"github.com/odyssey-erp/odyssey-pos/report"
)

// Services holds the domain services shared by the HTTP server and the worker.
type Services struct {
	AuditLog    *shared.AuditLogger
	Timeline    *audit.Service
	Idempotency *shared.IdempotencyStore
	RBAC        *rbac.Service
	Auth        *auth.Service
	Users       *users.Service
	Tenants     *tenants.Service
	Billing     *billing.Service
	Catalog     *catalog.Service
	Clients     *clients.Service
	Orders      *orders.Service
	Cart        *cart.Service
	Payroll     *payroll.Service
	Expenses    *expenses.Service
	Reports     *reports.Service
	Snapshot    *snapshot.Service
	PDF         *report.Client
	Queue       *jobs.Client
}

// ServiceDeps are the infrastructure handles the services are built on.
type ServiceDeps struct {
	Config  *Config
	Logger  *slog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Metrics *observability.Metrics
}

// NewServices wires every domain service against Postgres and Redis.
func NewServices(deps ServiceDeps) (*Services, error) {
	cfg, logger, pool := deps.Config, deps.Logger, deps.Pool

	templates, err := view.NewEngine()
	if err != nil {
		return nil, err
	}

	auditLog := shared.NewAuditLogger(pool)
	reportCache := reports.NewCache(deps.Redis, cfg.ReportCacheTTL)
	pdf := report.NewClient(cfg.GotenbergURL)
	queue := jobs.NewClient(cfg.QueueRedis())

	tenantRepo := tenants.NewRepository(pool)
	tenantService := tenants.NewService(tenantRepo, auditLog, logger)

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	clientService := clients.NewService(clients.NewRepository(pool), auditLog, reportCache, logger)
	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo)
	expenseService := expenses.NewService(expenses.NewRepository(pool), reportCache, logger)
	payrollService := payroll.NewService(payroll.NewRepository(pool), auditLog, logger)

	reportService := reports.NewService(reports.ServiceParams{
		Orders:    orderService,
		Lookup:    orderService,
		Commerces: tenantService,
		Clients:   clientService,
		Expenses:  expenseService,
		Cache:     reportCache,
		Templates: templates,
		PDF:       pdf,
		Queue:     queue,
		Logger:    logger,
	})

	var observer cart.CheckoutObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}
	idempotency := shared.NewIdempotencyStore(pool)
	cartService := cart.NewService(cart.ServiceParams{
		Store:    cart.NewStore(deps.Redis, cfg.CartTTL),
		Products: catalogService,
		Clients:  clientService,
		Orders:   orderRepo,
		Keys:     idempotency,
		Cache:    reportService,
		Metrics:  observer,
		Logger:   logger,
	})

	snapshotService := snapshot.NewService(snapshot.ServiceParams{
		Products:  catalogService,
		Clients:   clientService,
		Employees: payrollService,
		Orders:    orderService,
		Expenses:  expenseService,
		Store:     snapshot.NewStore(pool),
		Cache:     reportService,
		Logger:    logger,
	})

	return &Services{
		AuditLog:    auditLog,
		Timeline:    audit.NewService(audit.NewRepository(pool)),
		Idempotency: idempotency,
		RBAC:        rbac.NewService(),
		Auth:        auth.NewService(auth.NewRepository(pool)),
		Users:       users.NewService(users.NewRepository(pool), auditLog, logger),
		Tenants:     tenantService,
		Billing:     billing.NewService(billing.NewRepository(pool), tenantService, auditLog, cfg.InvoiceDueDays, logger),
		Catalog:     catalogService,
		Clients:     clientService,
		Orders:      orderService,
		Cart:        cartService,
		Payroll:     payrollService,
		Expenses:    expenseService,
		Reports:     reportService,
		Snapshot:    snapshotService,
		PDF:         pdf,
		Queue:       queue,
	}, nil
}

// Close releases the queue client.
func (s *Services) Close() error {
	if s == nil || s.Queue == nil {
		return nil
	}
	return s.Queue.Close()
}

// Handlers builds the HTTP handlers on top of the services.
func (s *Services) Handlers(logger *slog.Logger, sessions *shared.SessionManager, csrf *shared.CSRFManager, inspector jobs.QueueInspector) RouterParams {
	guard := rbac.Middleware{Service: s.RBAC, Logger: logger}
	return RouterParams{
		Logger:             logger,
		SessionManager:     sessions,
		CSRFManager:        csrf,
		Principals:         s.Auth,
		AuthHandler:        auth.NewHandler(logger, s.Auth, sessions, csrf),
		UsersHandler:       users.NewHandler(logger, s.Users, guard),
		AuditHandler:       audithttp.NewHandler(logger, s.Timeline, guard),
		TenantsHandler:     tenants.NewHandler(logger, s.Tenants, guard),
		BillingHandler:     billing.NewHandler(logger, s.Billing, guard),
		CatalogHandler:     catalog.NewHandler(logger, s.Catalog, guard),
		ClientsHandler:     clients.NewHandler(logger, s.Clients, guard),
		CartHandler:        cart.NewHandler(logger, s.Cart, guard),
		OrdersHandler:      orders.NewHandler(logger, s.Orders, guard),
		PayrollHandler:     payroll.NewHandler(logger, s.Payroll, guard),
		ExpensesHandler:    expenses.NewHandler(logger, s.Expenses, guard),
		ReportsHandler:     reports.NewHandler(logger, s.Reports, guard),
		SnapshotHandler:    snapshot.NewHandler(logger, s.Snapshot, guard),
		PermissionsHandler: rbac.NewPermissionsHandler(s.RBAC, guard),
		ReportHandler:      report.NewHandler(s.PDF, logger),
		JobHandler:         jobs.NewHandler(inspector, logger),
	}
}
