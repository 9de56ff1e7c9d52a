package facade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/inbound"
	"garage-dashboard/internal/port/outbound"
)

const isoDate = "2006-01-02"

// AnalyticsApplicationService computes dashboard figures from bookings.
// Results are cached per garage until the next booking or service mutation
// or until ttl passes.
type AnalyticsApplicationService struct {
	store  outbound.Store
	cache  outbound.Cache
	ttl    time.Duration
	logger logger.Logger
	now    Clock
}

var _ inbound.AnalyticsUseCase = (*AnalyticsApplicationService)(nil)

func NewAnalyticsApplicationService(
	store outbound.Store,
	cache outbound.Cache,
	ttl time.Duration,
	log logger.Logger,
	now Clock,
) *AnalyticsApplicationService {
	return &AnalyticsApplicationService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithField("service", "analytics"),
		now:    now,
	}
}

// cached serves key from the cache or stores the result of compute. Cache
// errors never fail the request.
func cached[T any](ctx context.Context, s *AnalyticsApplicationService, key string, compute func() (T, error)) (T, error) {
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		s.logger.Warnf("Discarding undecodable cache entry %s", key)
	} else if !errors.Is(err, outbound.ErrCacheMiss) {
		s.logger.Warnf("Cache get %s: %v", key, err)
	}

	v, err := compute()
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warnf("Cache set %s: %v", key, err)
	}
	return v, nil
}

func rangeKey(garageID int64, kind string, from, to time.Time) string {
	return fmt.Sprintf("%s%s:%d:%d", analyticsPrefix(garageID), kind, from.UnixMilli(), to.UnixMilli())
}

// between lists bookings dated in [from, to]; both ends are inclusive.
func (s *AnalyticsApplicationService) between(ctx context.Context, garageID int64, from, to time.Time) ([]model.Booking, error) {
	return s.store.ListBookingsBetween(ctx, garageID, from, to.Add(time.Millisecond))
}

// BookingCountByDate counts bookings per UTC calendar day, oldest first.
func (s *AnalyticsApplicationService) BookingCountByDate(ctx context.Context, garageID int64, from, to time.Time) ([]model.DailyBookingCount, error) {
	return cached(ctx, s, rangeKey(garageID, "bookings", from, to), func() ([]model.DailyBookingCount, error) {
		bookings, err := s.between(ctx, garageID, from, to)
		if err != nil {
			return nil, err
		}

		counts := make(map[string]int)
		for _, b := range bookings {
			counts[b.Date.UTC().Format(isoDate)]++
		}

		out := make([]model.DailyBookingCount, 0, len(counts))
		for date, n := range counts {
			out = append(out, model.DailyBookingCount{Date: date, Count: n})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
		return out, nil
	})
}

// RevenueByService sums price × quantity per booked service, by service
// name. A quantity below one counts as one; deleted services are skipped.
func (s *AnalyticsApplicationService) RevenueByService(ctx context.Context, garageID int64, from, to time.Time) ([]model.ServiceRevenue, error) {
	return cached(ctx, s, rangeKey(garageID, "revenue", from, to), func() ([]model.ServiceRevenue, error) {
		bookings, err := s.between(ctx, garageID, from, to)
		if err != nil {
			return nil, err
		}

		services := make(map[int64]*model.Service)
		revenue := make(map[string]int64)
		for _, b := range bookings {
			for _, item := range b.ServicesBooked {
				svc, ok := services[item.ServiceID]
				if !ok {
					found, err := s.store.GetService(ctx, item.ServiceID)
					switch {
					case errors.Is(err, outbound.ErrNotFound):
					case err != nil:
						return nil, err
					default:
						svc = &found
					}
					services[item.ServiceID] = svc
				}
				if svc == nil {
					continue
				}
				qty := int64(item.Quantity)
				if qty < 1 {
					qty = 1
				}
				revenue[svc.Name] += svc.Price * qty
			}
		}

		out := make([]model.ServiceRevenue, 0, len(revenue))
		for name, total := range revenue {
			out = append(out, model.ServiceRevenue{Service: name, Revenue: total})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
		return out, nil
	})
}

// TodaySummary covers the current local day.
func (s *AnalyticsApplicationService) TodaySummary(ctx context.Context, garageID int64) (model.TodaySummary, error) {
	start, end := dayBounds(s.now())
	key := fmt.Sprintf("%stoday:%s", analyticsPrefix(garageID), start.Format(isoDate))

	return cached(ctx, s, key, func() (model.TodaySummary, error) {
		bookings, err := s.store.ListBookingsBetween(ctx, garageID, start, end)
		if err != nil {
			return model.TodaySummary{}, err
		}

		var sum model.TodaySummary
		sum.Bookings = len(bookings)
		for _, b := range bookings {
			sum.Revenue += b.TotalPrice
			if b.Status.Pending() {
				sum.PendingActions++
			}
		}
		return sum, nil
	})
}

// HeroMetrics reports the all-time booking count, the revenue of bookings
// dated in the current local month, and the share of finished bookings
// that were completed, as a percentage with one decimal.
func (s *AnalyticsApplicationService) HeroMetrics(ctx context.Context, garageID int64) (model.HeroMetrics, error) {
	now := s.now()
	y, m, _ := now.Date()
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	key := fmt.Sprintf("%shero:%s", analyticsPrefix(garageID), monthStart.Format("2006-01"))

	return cached(ctx, s, key, func() (model.HeroMetrics, error) {
		bookings, err := s.store.ListBookingsByGarage(ctx, garageID)
		if err != nil {
			return model.HeroMetrics{}, err
		}

		var (
			hm       model.HeroMetrics
			finished int
			done     int
		)
		hm.TotalBookings = len(bookings)
		for _, b := range bookings {
			if !b.Date.Before(monthStart) && b.Date.Before(monthEnd) {
				hm.MonthlyRevenue += b.TotalPrice
			}
			switch b.Status {
			case model.BookingCompleted:
				done++
				finished++
			case model.BookingCancelled, model.BookingNoShow:
				finished++
			}
		}
		if finished > 0 {
			hm.CompletionRate = math.Round(float64(done)/float64(finished)*1000) / 10
		}
		return hm, nil
	})
}
