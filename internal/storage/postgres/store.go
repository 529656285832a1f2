// Package postgres provides Postgres-backed persistence for completed
// pipeline runs.
//
// Purpose:
//
//	This package implements the storage stage's DatabaseClient against
//	Postgres. Each run is written in one transaction: the daily row, both
//	shift rows, then all sixty-four timeslot rows, upserted on their
//	natural keys so reruns replace rather than duplicate. It uses pgxpool
//	for connection pooling; the pool is safe to share across workers and
//	each WriteRun holds its own connection for the transaction.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/persist"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Store provides Postgres-backed persistence for run results.
type Store struct {
	pool     *pgxpool.Pool
	ownsPool bool
}

// New creates a store using the provided connection string and takes
// ownership of the pool. The connection is verified before returning.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool, ownsPool: true}, nil
}

// NewStoreFromPool wraps an existing pgx pool.
func NewStoreFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close closes the underlying pool if the store owns it.
func (s *Store) Close() {
	if s.ownsPool && s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Pool exposes the underlying pgx pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) withTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	return nil
}

// WriteRun persists all rows for one run in a single transaction. On any
// failure the transaction is rolled back and the error names the table
// whose write failed.
func (s *Store) WriteRun(ctx context.Context, rows persist.RunRows) error {
	businessDate, err := time.Parse(timeutil.DateLayout, rows.Daily.BusinessDate)
	if err != nil {
		return fmt.Errorf("parse business date %q: %w", rows.Daily.BusinessDate, err)
	}

	return s.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := upsertDaily(ctx, tx, businessDate, rows.Daily); err != nil {
			return fmt.Errorf("upsert %s: %w", persist.TableDaily, err)
		}
		for _, shift := range rows.Shifts {
			if err := upsertShift(ctx, tx, businessDate, shift); err != nil {
				return fmt.Errorf("upsert %s: %w", persist.TableShift, err)
			}
		}
		for _, slot := range rows.Timeslots {
			if err := upsertTimeslot(ctx, tx, businessDate, slot); err != nil {
				return fmt.Errorf("upsert %s: %w", persist.TableTimeslot, err)
			}
		}
		return nil
	})
}

func upsertDaily(ctx context.Context, tx pgx.Tx, businessDate time.Time, row persist.DailyRow) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO daily_operations (
			business_date, restaurant_code, total_sales, labor_cost,
			labor_percent, labor_hours, employee_count, net_profit,
			profit_margin
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (business_date, restaurant_code) DO UPDATE SET
			total_sales = EXCLUDED.total_sales,
			labor_cost = EXCLUDED.labor_cost,
			labor_percent = EXCLUDED.labor_percent,
			labor_hours = EXCLUDED.labor_hours,
			employee_count = EXCLUDED.employee_count,
			net_profit = EXCLUDED.net_profit,
			profit_margin = EXCLUDED.profit_margin,
			updated_at = NOW()
	`,
		businessDate, row.RestaurantCode, row.TotalSales, row.LaborCost,
		row.LaborPercent, row.LaborHours, row.EmployeeCount, row.NetProfit,
		row.ProfitMargin,
	)
	return err
}

func upsertShift(ctx context.Context, tx pgx.Tx, businessDate time.Time, row persist.ShiftRow) error {
	statsJSON, err := marshalStats(row.CategoryStats)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO shift_operations (
			business_date, restaurant_code, shift_name, sales, labor_cost,
			order_count, category_stats, manager, voids, cash_collected,
			tips_distributed, vendor_payouts, net_cash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (business_date, restaurant_code, shift_name) DO UPDATE SET
			sales = EXCLUDED.sales,
			labor_cost = EXCLUDED.labor_cost,
			order_count = EXCLUDED.order_count,
			category_stats = EXCLUDED.category_stats,
			manager = EXCLUDED.manager,
			voids = EXCLUDED.voids,
			cash_collected = EXCLUDED.cash_collected,
			tips_distributed = EXCLUDED.tips_distributed,
			vendor_payouts = EXCLUDED.vendor_payouts,
			net_cash = EXCLUDED.net_cash,
			updated_at = NOW()
	`,
		businessDate, row.RestaurantCode, row.ShiftName, row.Sales,
		row.LaborCost, row.OrderCount, statsJSON, row.Manager, row.Voids,
		row.CashCollected, row.TipsDistributed, row.VendorPayouts,
		row.NetCash,
	)
	return err
}

func upsertTimeslot(ctx context.Context, tx pgx.Tx, businessDate time.Time, row persist.TimeslotRow) error {
	statsJSON, err := marshalStats(row.CategoryStats)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO timeslot_results (
			business_date, restaurant_code, timeslot_index, timeslot_label,
			shift_name, orders, sales, labor_cost, efficiency_score, grade,
			pass_fail, category_stats
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (business_date, restaurant_code, timeslot_index, shift_name) DO UPDATE SET
			timeslot_label = EXCLUDED.timeslot_label,
			orders = EXCLUDED.orders,
			sales = EXCLUDED.sales,
			labor_cost = EXCLUDED.labor_cost,
			efficiency_score = EXCLUDED.efficiency_score,
			grade = EXCLUDED.grade,
			pass_fail = EXCLUDED.pass_fail,
			category_stats = EXCLUDED.category_stats,
			updated_at = NOW()
	`,
		businessDate, row.RestaurantCode, row.TimeslotIndex,
		row.TimeslotLabel, row.ShiftName, row.Orders, row.Sales,
		row.LaborCost, row.EfficiencyScore, row.Grade, row.PassFail,
		statsJSON,
	)
	return err
}

func marshalStats(stats domain.CategoryBreakdown) (string, error) {
	data, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("marshal category stats: %w", err)
	}
	return string(data), nil
}
