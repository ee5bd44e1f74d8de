package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

// AnalyticsService reports revenue over all orders, whatever their status.
type AnalyticsService struct {
	Repo           *repo.GormRepo
	Location       *time.Location
	CurrencyPrefix string
	Now            func() time.Time
}

func (s *AnalyticsService) Stats(ctx context.Context) (*transport.StatsResponse, error) {
	from, to := s.dayBounds()

	today, err := s.Repo.SumOrders(ctx, from, to)
	if err != nil {
		return nil, err
	}
	occupied, total, err := s.Repo.TableOccupancy(ctx)
	if err != nil {
		return nil, err
	}
	delivered, err := s.Repo.DeliveredBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &transport.StatsResponse{
		TodayOrders:    today.OrderCount,
		TodayRevenue:   s.money(today.TotalSum),
		OccupiedTables: fmt.Sprintf("%d/%d", occupied, total),
		AvgOrderTime:   fmt.Sprintf("%d min", avgMinutes(delivered)),
	}, nil
}

func (s *AnalyticsService) Financial(ctx context.Context) (*transport.FinancialResponse, error) {
	dayFrom, dayTo := s.dayBounds()
	monthFrom, monthTo := s.monthBounds()

	today, err := s.Repo.SumOrders(ctx, dayFrom, dayTo)
	if err != nil {
		return nil, err
	}
	month, err := s.Repo.SumOrders(ctx, monthFrom, monthTo)
	if err != nil {
		return nil, err
	}
	all, err := s.Repo.SumOrders(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	avg := models.Money{}
	if all.OrderCount > 0 {
		avg = models.Money{Decimal: all.TotalSum.Div(decimal.NewFromInt(all.OrderCount))}
	}

	return &transport.FinancialResponse{
		Today:     s.money(today.TotalSum),
		Month:     s.money(month.TotalSum),
		AvgTicket: s.money(avg),
	}, nil
}

func (s *AnalyticsService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

// dayBounds is the current calendar day in the reporting timezone, as UTC instants.
func (s *AnalyticsService) dayBounds() (time.Time, time.Time) {
	now := clock(s.Now).In(s.loc())
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc())
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

func (s *AnalyticsService) monthBounds() (time.Time, time.Time) {
	now := clock(s.Now).In(s.loc())
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc())
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}

func (s *AnalyticsService) money(m models.Money) string {
	return s.CurrencyPrefix + m.String()
}

// avgMinutes is the mean time from creation to last update, rounded to whole minutes.
func avgMinutes(orders []models.Order) int64 {
	if len(orders) == 0 {
		return 0
	}
	var sum time.Duration
	for _, o := range orders {
		if o.UpdatedAt.After(o.CreatedAt) {
			sum += o.UpdatedAt.Sub(o.CreatedAt)
		}
	}
	return int64(math.Round((sum / time.Duration(len(orders))).Minutes()))
}
