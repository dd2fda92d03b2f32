package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propertyconnect/engine/pkg/apperrors"
	"github.com/propertyconnect/engine/pkg/database"
	"github.com/propertyconnect/engine/pkg/models"
)

// TransactionRepository defines the interface for transaction data access.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*models.Transaction, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.Transaction, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Transaction, error)
	// SetStatus updates the transaction status; completedAt is stamped
	// when the new status is COMPLETED and cleared otherwise.
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	SetContractHash(ctx context.Context, id uuid.UUID, contractHash string) error
}

type transactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new transaction repository on the given handle.
func NewTransactionRepository(db *database.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, type, amount, status, description, buyer_id, property_id, agent_id,
	contract_hash, completed_at, created_at, updated_at`

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	query := `
		INSERT INTO transactions (id, type, amount, status, description, buyer_id, property_id,
			agent_id, contract_hash, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.Type,
		tx.Amount,
		tx.Status,
		tx.Description,
		tx.BuyerID,
		tx.PropertyID,
		tx.AgentID,
		tx.ContractHash,
		tx.CompletedAt,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (r *transactionRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*models.Transaction, error) {
	return r.listBy(ctx, "buyer_id = $1", buyerID)
}

func (r *transactionRepository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.Transaction, error) {
	return r.listBy(ctx, "agent_id = $1", agentID)
}

func (r *transactionRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Transaction, error) {
	return r.listBy(ctx, "property_id = $1", propertyID)
}

func (r *transactionRepository) listBy(ctx context.Context, cond string, arg any) ([]*models.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC`, transactionColumns, cond)

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func (r *transactionRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	var completedAt *time.Time
	if status == models.TransactionStatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	result, err := r.db.Exec(ctx,
		`UPDATE transactions SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4`,
		status, completedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set transaction status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) SetContractHash(ctx context.Context, id uuid.UUID, contractHash string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE transactions SET contract_hash = $1, updated_at = $2 WHERE id = $3`,
		contractHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set transaction contract hash: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.Type,
		&tx.Amount,
		&tx.Status,
		&tx.Description,
		&tx.BuyerID,
		&tx.PropertyID,
		&tx.AgentID,
		&tx.ContractHash,
		&tx.CompletedAt,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
