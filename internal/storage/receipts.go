package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avoronov/snapledger/internal/common"
	"github.com/avoronov/snapledger/internal/model"
	"github.com/avoronov/snapledger/internal/service"
)

// SaveReceipt durably stores a confirmed receipt together with its positions
// and reference ids, returning the new identifier.
func (s *SQLiteStorage) SaveReceipt(ctx context.Context, receipt *model.Receipt) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateReceipt(receipt); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO receipts (user_id, merchant, category, total_amount, is_income, date, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		receipt.UserID, receipt.Merchant, receipt.Category, receipt.TotalAmount,
		receipt.IsIncome, nullableString(receipt.Date), nullableString(receipt.Description))
	if err != nil {
		return 0, fmt.Errorf("failed to insert receipt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read receipt id: %w", err)
	}

	for i, p := range receipt.Positions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO positions (receipt_id, seq, description, quantity, category, price)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, p.Description, p.Quantity, p.Category, p.Price); err != nil {
			return 0, fmt.Errorf("failed to insert position %d: %w", i, err)
		}
	}

	for _, refID := range receipt.ReferenceReceiptIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO receipt_references (receipt_id, ref_receipt_id) VALUES (?, ?)`,
			id, refID); err != nil {
			return 0, fmt.Errorf("failed to insert reference: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit receipt: %w", err)
	}
	return id, nil
}

// GetReceipt loads a receipt owned by userID, including positions in their
// original item order and reference ids.
func (s *SQLiteStorage) GetReceipt(ctx context.Context, id, userID int64) (*model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var (
		r           model.Receipt
		date, descr sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, merchant, category, total_amount, is_income, date, description
		 FROM receipts WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&r.ID, &r.UserID, &r.Merchant, &r.Category, &r.TotalAmount, &r.IsIncome, &date, &descr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: receipt %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}
	r.Date = date.String
	r.Description = descr.String

	if r.Positions, err = s.loadPositions(ctx, id); err != nil {
		return nil, err
	}
	if r.ReferenceReceiptIDs, err = s.loadReferences(ctx, id); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteReceipt removes a receipt owned by userID.
func (s *SQLiteStorage) DeleteReceipt(ctx context.Context, id, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: receipt %d", common.ErrNotFound, id)
	}
	return nil
}

// ListReceipts returns the newest receipts for a user, most recent first.
func (s *SQLiteStorage) ListReceipts(ctx context.Context, userID int64, limit int) ([]model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, merchant, category, total_amount, is_income, date, description
		 FROM receipts WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanReceipts(rows)
}

// SearchReceipts returns a user's receipts whose merchant contains the query,
// case-insensitively.
func (s *SQLiteStorage) SearchReceipts(ctx context.Context, userID int64, merchantQuery string) ([]model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(merchantQuery, "merchantQuery"); err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(merchantQuery) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, merchant, category, total_amount, is_income, date, description
		 FROM receipts WHERE user_id = ? AND merchant LIKE ? ESCAPE '\'
		 ORDER BY id DESC`, userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanReceipts(rows)
}

// SummaryByCategory aggregates a user's receipts per category with income
// counted positive and expenses negative.
func (s *SQLiteStorage) SummaryByCategory(ctx context.Context, userID int64) ([]service.CategorySummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category,
		        SUM(CASE WHEN is_income THEN total_amount ELSE -total_amount END) AS net,
		        COUNT(*) AS cnt
		 FROM receipts WHERE user_id = ?
		 GROUP BY category ORDER BY net ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []service.CategorySummary
	for rows.Next() {
		var cs service.CategorySummary
		if err := rows.Scan(&cs.Category, &cs.Net, &cs.Count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) loadPositions(ctx context.Context, receiptID int64) ([]model.Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT description, quantity, category, price FROM positions
		 WHERE receipt_id = ? ORDER BY seq ASC`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Position
	for rows.Next() {
		var (
			p        model.Position
			quantity sql.NullString
		)
		if err := rows.Scan(&p.Description, &quantity, &p.Category, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Quantity = quantity.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) loadReferences(ctx context.Context, receiptID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ref_receipt_id FROM receipt_references WHERE receipt_id = ? ORDER BY ref_receipt_id`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanReceipts(rows *sql.Rows) ([]model.Receipt, error) {
	var out []model.Receipt
	for rows.Next() {
		var (
			r           model.Receipt
			date, descr sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Merchant, &r.Category, &r.TotalAmount,
			&r.IsIncome, &date, &descr); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		r.Date = date.String
		r.Description = descr.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
