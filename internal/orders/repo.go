package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/safetyshop-backend/pkg/db"
	"github.com/angelmondragon/safetyshop-backend/pkg/db/models"
)

// ErrDuplicateOrderNumber is returned by Create when the order number is taken.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// Repository reads and writes stored order documents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, order.OrderNumber)
		}
		return nil, err
	}
	return order, nil
}

// FindByID returns gorm.ErrRecordNotFound when no order matches.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByNumber returns gorm.ErrRecordNotFound when no order matches.
func (r *repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("order_number = ?", strings.TrimSpace(orderNumber)).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
