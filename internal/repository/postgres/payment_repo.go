package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusticketing/internal/domain"
)

type paymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) domain.PaymentRepository {
	return &paymentRepository{DB: db}
}

const paymentColumns = `id, user_id, event_id, order_id, payment_id, signature, amount, currency, status, qr_code, created_at, updated_at`

func scanPayment(s rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	var paymentID, signature sql.NullString
	err := s.Scan(&p.ID, &p.UserID, &p.EventID, &p.OrderID, &paymentID, &signature, &p.Amount, &p.Currency,
		&p.Status, &p.QRCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	if paymentID.Valid {
		p.PaymentID = &paymentID.String
	}
	if signature.Valid {
		p.Signature = &signature.String
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (user_id, event_id, order_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, p.UserID, p.EventID, p.OrderID, p.Amount, p.Currency, p.Status,
		p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = $1
	`
	return scanPayment(r.DB.QueryRowContext(ctx, query, orderID))
}

// MarkSuccess settles the payment only while it is PENDING, so concurrent callbacks for
// one order settle it exactly once.
func (r *paymentRepository) MarkSuccess(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, payment_id = $2, signature = $3, updated_at = NOW()
		WHERE order_id = $4 AND status = $5
	`, domain.PaymentSuccess, paymentID, signature, orderID, domain.PaymentPending)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

func (r *paymentRepository) AttachTicket(ctx context.Context, orderID, qrCode string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE payments SET qr_code = $1, updated_at = NOW() WHERE order_id = $2`, qrCode, orderID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// ListAll pages through payments newest first with user and event summaries.
func (r *paymentRepository) ListAll(ctx context.Context, params domain.PaginationParams) ([]*domain.PaymentDetail, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT p.id, p.user_id, p.event_id, p.order_id, p.payment_id, p.signature, p.amount, p.currency,
			p.status, p.qr_code, p.created_at, p.updated_at,
			u.name, u.email,
			e.id, e.title, e.date, e.venue, e.price, e.category, e.banner_url
		FROM payments p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN events e ON e.id = p.event_id
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*domain.PaymentDetail{}
	for rows.Next() {
		p := &domain.Payment{}
		user := &domain.UserSummary{}
		var paymentID, signature sql.NullString
		var ev nullableEventSummary
		if err := rows.Scan(&p.ID, &p.UserID, &p.EventID, &p.OrderID, &paymentID, &signature, &p.Amount,
			&p.Currency, &p.Status, &p.QRCode, &p.CreatedAt, &p.UpdatedAt,
			&user.Name, &user.Email,
			&ev.ID, &ev.Title, &ev.Date, &ev.Venue, &ev.Price, &ev.Category, &ev.BannerURL); err != nil {
			return nil, 0, err
		}
		if paymentID.Valid {
			p.PaymentID = &paymentID.String
		}
		if signature.Valid {
			p.Signature = &signature.String
		}
		user.ID = p.UserID
		out = append(out, &domain.PaymentDetail{Payment: p, User: user, Event: ev.summary()})
	}
	return out, total, rows.Err()
}
