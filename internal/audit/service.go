package audit

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	// MaxExportRows caps a CSV export.
	MaxExportRows = 10000
	// MaxRange is the widest timeline window accepted.
	MaxRange = 90 * 24 * time.Hour
)

// Service serves the audit timeline.
type Service struct {
	repo Repository
}

// NewService creates the audit timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of the timeline.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if err := validate(filters); err != nil {
		return Result{}, err
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	rows, err := s.repo.Window(ctx, filters, (page-1)*pageSize, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	if rows == nil {
		rows = []TimelineRow{}
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every row matching filters, up to MaxExportRows.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if err := validate(filters); err != nil {
		return nil, err
	}
	return s.repo.Window(ctx, filters, 0, MaxExportRows)
}

func validate(f TimelineFilters) error {
	if !f.From.IsZero() && !f.To.IsZero() {
		if !f.To.After(f.From) {
			return fmt.Errorf("%w: range end before start", httpx.ErrValidation)
		}
		if f.To.Sub(f.From) > MaxRange {
			return fmt.Errorf("%w: range wider than 90 days", httpx.ErrValidation)
		}
	}
	return nil
}

// WriteCSV encodes timeline rows with a header line.
func WriteCSV(w io.Writer, rows []TimelineRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"at", "actor_id", "actor", "action", "entity", "entity_id", "meta"}); err != nil {
		return err
	}
	for _, row := range rows {
		meta := ""
		if len(row.Meta) > 0 {
			raw, err := json.Marshal(row.Meta)
			if err != nil {
				return err
			}
			meta = string(raw)
		}
		record := []string{
			row.At.UTC().Format(time.RFC3339),
			strconv.FormatInt(row.ActorID, 10),
			row.Actor,
			row.Action,
			row.Entity,
			row.EntityID,
			meta,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
