package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/expenses"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/view"
	"github.com/odyssey-erp/odyssey-pos/report"
)

// SummaryTemplate is the view rendered for HTML, PDF and email reports.
const SummaryTemplate = "reports/summary.html"

// OrderSource lists a tenant's orders.
type OrderSource interface {
	List(ctx context.Context, commerceID int64, filters orders.ListFilters) ([]orders.Order, error)
}

// ClientSource lists a tenant's clients.
type ClientSource interface {
	List(ctx context.Context, commerceID int64, filters clients.ListFilters) ([]clients.Client, error)
}

// ExpenseSource lists a tenant's expenses.
type ExpenseSource interface {
	List(ctx context.Context, commerceID int64, filters expenses.ListFilters) ([]expenses.Expense, error)
}

// TemplateRenderer executes named HTML templates.
type TemplateRenderer interface {
	RenderTo(w io.Writer, name string, data view.TemplateData) error
}

// PDFRenderer converts an HTML document to PDF.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, filename string, html []byte, opts ...report.RenderOption) ([]byte, error)
}

// DeliveryQueue schedules asynchronous report emails.
type DeliveryQueue interface {
	EnqueueReportDelivery(ctx context.Context, req DeliveryRequest) (string, error)
}

// DeliveryRequest asks the worker to email a rendered summary.
type DeliveryRequest struct {
	CommerceID  int64     `json:"commerce_id"`
	From        time.Time `json:"from,omitempty"`
	To          time.Time `json:"to,omitempty"`
	Recipient   string    `json:"recipient"`
	RequestedBy int64     `json:"requested_by"`
}

// Filter returns the report scope of the request.
func (r DeliveryRequest) Filter() Filter {
	return Filter{CommerceID: r.CommerceID, From: r.From, To: r.To}
}

// ServiceParams groups the Service collaborators. Cache, PDF and Queue are
// optional; the features they back report an error when missing.
type ServiceParams struct {
	Orders    OrderSource
	Lookup    OrderLookup
	Commerces CommerceLookup
	Clients   ClientSource
	Expenses  ExpenseSource
	Cache     *Cache
	Templates TemplateRenderer
	PDF       PDFRenderer
	Queue     DeliveryQueue
	TopN      int
	Logger    *slog.Logger
}

// Service builds and delivers tenant reports.
type Service struct {
	orders    OrderSource
	lookup    OrderLookup
	commerces CommerceLookup
	clients   ClientSource
	expenses  ExpenseSource
	cache     *Cache
	templates TemplateRenderer
	pdf       PDFRenderer
	queue     DeliveryQueue
	topN      int
	logger    *slog.Logger
	group     singleflight.Group
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topN := p.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Service{
		orders:    p.Orders,
		lookup:    p.Lookup,
		commerces: p.Commerces,
		clients:   p.Clients,
		expenses:  p.Expenses,
		cache:     p.Cache,
		templates: p.Templates,
		pdf:       p.PDF,
		queue:     p.Queue,
		topN:      topN,
		logger:    logger,
		now:       time.Now,
	}
}

// Bump invalidates the tenant's cached reports. It lets the Service stand in
// for the cache wherever ledgers report mutations.
func (s *Service) Bump(ctx context.Context, commerceID int64) error {
	return s.cache.Bump(ctx, commerceID)
}

// Dashboard returns the tenant summary, served from cache when possible.
// Concurrent builds of the same key share one computation.
func (s *Service) Dashboard(ctx context.Context, filter Filter) (Summary, error) {
	if filter.CommerceID <= 0 {
		return Summary{}, fmt.Errorf("%w: commerce required", httpx.ErrValidation)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return Summary{}, fmt.Errorf("%w: range ends before it starts", httpx.ErrValidation)
	}
	key, err := s.cache.BuildKey(ctx, filter.CommerceID, "summary", boundToken(filter.From), boundToken(filter.To))
	if err != nil {
		s.logger.Warn("report cache key", slog.Any("error", err))
		return s.build(ctx, filter)
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		var summary Summary
		err := s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
			return s.build(ctx, filter)
		})
		return summary, err
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

func (s *Service) build(ctx context.Context, filter Filter) (Summary, error) {
	var (
		orderList   []orders.Order
		clientList  []clients.Client
		expenseList []expenses.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orderList, err = s.orders.List(gctx, filter.CommerceID, orders.ListFilters{From: filter.From, To: filter.To})
		return err
	})
	g.Go(func() error {
		var err error
		clientList, err = s.clients.List(gctx, filter.CommerceID, clients.ListFilters{})
		return err
	})
	g.Go(func() error {
		var err error
		expenseList, err = s.expenses.List(gctx, filter.CommerceID, expenses.ListFilters{From: filter.From, To: filter.To})
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return BuildSummary(filter, orderList, clientList, expenseList, s.topN, s.now()), nil
}

// RenderHTML renders the summary document.
func (s *Service) RenderHTML(ctx context.Context, filter Filter) ([]byte, error) {
	summary, err := s.Dashboard(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.renderSummary(summary)
}

func (s *Service) renderSummary(summary Summary) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("reports: template renderer not configured")
	}
	var buf bytes.Buffer
	if err := s.templates.RenderTo(&buf, SummaryTemplate, view.TemplateData{Title: Subject(summary), Data: summary}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF renders the summary document through the PDF converter.
func (s *Service) PDF(ctx context.Context, filter Filter) ([]byte, error) {
	if s.pdf == nil {
		return nil, fmt.Errorf("reports: pdf renderer not configured")
	}
	html, err := s.RenderHTML(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.pdf.RenderHTML(ctx, "summary.html", html)
}

// WriteCSV writes the summary and best sellers as CSV.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, filter Filter) error {
	summary, err := s.Dashboard(ctx, filter)
	if err != nil {
		return err
	}
	return WriteSummaryCSV(w, summary)
}

// Mailto builds a mailto link carrying the plain-text summary.
func (s *Service) Mailto(ctx context.Context, filter Filter, to string) (string, error) {
	summary, err := s.Dashboard(ctx, filter)
	if err != nil {
		return "", err
	}
	return MailtoLink(to, Subject(summary), PlainText(summary)), nil
}

// Email schedules delivery of the summary to the recipient and returns the task id.
func (s *Service) Email(ctx context.Context, req DeliveryRequest) (string, error) {
	if s.queue == nil {
		return "", fmt.Errorf("reports: delivery queue not configured")
	}
	if req.CommerceID <= 0 || req.Recipient == "" {
		return "", fmt.Errorf("%w: commerce and recipient required", httpx.ErrValidation)
	}
	id, err := s.queue.EnqueueReportDelivery(ctx, req)
	if err != nil {
		return "", err
	}
	s.logger.Info("report delivery queued",
		slog.Int64("commerce_id", req.CommerceID),
		slog.String("task_id", id))
	return id, nil
}

// Delivery is the rendered content of an emailed report.
type Delivery struct {
	Subject string
	HTML    []byte
	Text    string
}

// BuildDelivery renders the subject and bodies for an emailed report.
func (s *Service) BuildDelivery(ctx context.Context, req DeliveryRequest) (Delivery, error) {
	summary, err := s.Dashboard(ctx, req.Filter())
	if err != nil {
		return Delivery{}, err
	}
	html, err := s.renderSummary(summary)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Subject: Subject(summary), HTML: html, Text: PlainText(summary)}, nil
}

func boundToken(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
