package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
)

const repoServiceName = "Database"

// CouponRepo reads the coupon catalog
type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

// GetCouponByCode looks a coupon up case-insensitively. Unknown codes return nil, nil.
func (r *CouponRepo) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT code, discount_type, discount_value, max_discount_amount,
		       min_purchase_amount, valid_until
		FROM coupons
		WHERE code = $1
	`

	var c models.Coupon
	var discountType string
	err := r.db.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(code))).Scan(
		&c.Code,
		&discountType,
		&c.DiscountValue,
		&c.MaxDiscountAmount,
		&c.MinPurchaseAmount,
		&c.ValidUntil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.DiscountType = models.DiscountType(discountType)
	return &c, nil
}

// UpsertCoupon stores a coupon, normalizing its code
func (r *CouponRepo) UpsertCoupon(ctx context.Context, c models.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_type, discount_value, max_discount_amount, min_purchase_amount, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			max_discount_amount = EXCLUDED.max_discount_amount,
			min_purchase_amount = EXCLUDED.min_purchase_amount,
			valid_until = EXCLUDED.valid_until
	`
	_, err := r.db.ExecContext(ctx, query, strings.ToUpper(strings.TrimSpace(c.Code)), string(c.DiscountType),
		c.DiscountValue, c.MaxDiscountAmount, c.MinPurchaseAmount, c.ValidUntil)
	return err
}

// ProductRepo reads the product catalog
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// GetProduct returns the product or a not_found ServiceError
func (r *ProductRepo) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	query := `SELECT id, name, price FROM products WHERE id = $1`

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "PRODUCT_NOT_FOUND",
				fmt.Sprintf("product %s not found", productID), repoServiceName, "get_product", false, nil)
		}
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "PRODUCT_LOOKUP_FAILED", repoServiceName, "get_product", true)
	}
	return &p, nil
}

// PaymentLogRepo is the append-only payment attempt log
type PaymentLogRepo struct {
	db *sql.DB
}

func NewPaymentLogRepo(db *sql.DB) *PaymentLogRepo {
	return &PaymentLogRepo{db: db}
}

// Append inserts one audit entry. Entries are never updated.
func (r *PaymentLogRepo) Append(ctx context.Context, entry *models.PaymentAttemptLog) error {
	query := `
		INSERT INTO payment_attempt_logs (
			id, attempt_id, user_id, product_id, order_id, stage, success, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.AttemptID, entry.UserID, entry.ProductID, entry.OrderID,
		string(entry.Stage), entry.Success, entry.Message, entry.Timestamp,
	)
	return err
}

// ListByUser returns the newest entries for userID
func (r *PaymentLogRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.PaymentAttemptLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, attempt_id, user_id, product_id, order_id, stage, success, message, created_at
		FROM payment_attempt_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.PaymentAttemptLog{}
	for rows.Next() {
		var e models.PaymentAttemptLog
		var stage string
		if err := rows.Scan(&e.ID, &e.AttemptID, &e.UserID, &e.ProductID, &e.OrderID, &stage, &e.Success, &e.Message, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Stage = models.PaymentStage(stage)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
