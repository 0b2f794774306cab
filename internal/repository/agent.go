package repository

import (
	"context"
	"fmt"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type agentRepo struct{}

// NewAgentRepository returns a pgx-backed AgentRepository.
func NewAgentRepository() AgentRepository {
	return &agentRepo{}
}

func (r *agentRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Agent, error) {
	row := db.QueryRow(ctx, `
		SELECT id, name, type, parent_id, commission_rate, commission_total, created_at
		FROM agents WHERE id = $1`, id)
	return scanAgent(row)
}

// Chain is a bounded parent-pointer walk. Depth is capped at
// domain.MaxCommissionTiers and revisits are cut off, so cyclic or otherwise
// malformed hierarchy data cannot loop the cascade.
func (r *agentRepo) Chain(ctx context.Context, db DBTX, startID uuid.UUID) ([]domain.Agent, error) {
	chain := make([]domain.Agent, 0, domain.MaxCommissionTiers)
	seen := map[uuid.UUID]bool{}

	next := &startID
	for next != nil && len(chain) < domain.MaxCommissionTiers {
		if seen[*next] {
			break
		}
		seen[*next] = true

		agent, err := r.FindByID(ctx, db, *next)
		if err != nil {
			return nil, fmt.Errorf("walk agent chain: %w", err)
		}
		if agent == nil {
			break
		}
		chain = append(chain, *agent)
		next = agent.ParentID
	}
	return chain, nil
}

func (r *agentRepo) RecordCommission(ctx context.Context, db DBTX, rec *domain.CommissionRecord) error {
	_, err := db.Exec(ctx, `
		INSERT INTO commissions (id, agent_id, wager_id, tier, rate, basis_amount, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.AgentID, rec.WagerID, rec.Tier,
		infra.DecimalToNumeric(rec.Rate),
		infra.Int64ToNumeric(rec.BasisAmount),
		infra.Int64ToNumeric(rec.Amount))
	if err != nil {
		return fmt.Errorf("insert commission record: %w", err)
	}

	_, err = db.Exec(ctx, `
		UPDATE agents SET commission_total = commission_total + $2
		WHERE id = $1`,
		rec.AgentID, infra.Int64ToNumeric(rec.Amount))
	if err != nil {
		return fmt.Errorf("increment agent commission total: %w", err)
	}
	return nil
}

func (r *agentRepo) ListCommissionsByWager(ctx context.Context, db DBTX, wagerID uuid.UUID) ([]domain.CommissionRecord, error) {
	rows, err := db.Query(ctx, `
		SELECT id, agent_id, wager_id, tier, rate, basis_amount, amount, created_at
		FROM commissions WHERE wager_id = $1
		ORDER BY tier ASC`, wagerID)
	if err != nil {
		return nil, fmt.Errorf("query wager commissions: %w", err)
	}
	defer rows.Close()

	var recs []domain.CommissionRecord
	for rows.Next() {
		var rec domain.CommissionRecord
		var rateNum, basisNum, amountNum pgtype.Numeric
		if err := rows.Scan(&rec.ID, &rec.AgentID, &rec.WagerID, &rec.Tier,
			&rateNum, &basisNum, &amountNum, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan commission row: %w", err)
		}
		var convErr error
		rec.Rate, convErr = infra.NumericToDecimal(rateNum)
		if convErr != nil {
			return nil, fmt.Errorf("convert rate: %w", convErr)
		}
		rec.BasisAmount, convErr = infra.NumericToInt64(basisNum)
		if convErr != nil {
			return nil, convErr
		}
		rec.Amount, convErr = infra.NumericToInt64(amountNum)
		if convErr != nil {
			return nil, convErr
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var a domain.Agent
	var rateNum, totalNum pgtype.Numeric
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.ParentID, &rateNum, &totalNum, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan agent: %w", err)
	}

	var convErr error
	a.CommissionRate, convErr = infra.NumericToDecimal(rateNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert commission_rate: %w", convErr)
	}
	a.CommissionTotal, convErr = infra.NumericToInt64(totalNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert commission_total: %w", convErr)
	}
	return &a, nil
}
