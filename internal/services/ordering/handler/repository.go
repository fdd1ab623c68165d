package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mealplan-system/internal/database/models"
	"mealplan-system/internal/orders"
)

// OrderFilter narrows ListOrders. Empty fields match everything; Limit 0
// means no limit.
type OrderFilter struct {
	CustomerID string
	Statuses   []orders.Status
	Limit      int
	Newest     bool
}

// Repository is the persistence the ordering handler needs.
type Repository interface {
	FindCustomer(ctx context.Context, id string) (orders.Customer, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]orders.Order, error)
	FindOrders(ctx context.Context, ids []string) ([]orders.Order, error)
	// UpdateStatus moves every order in ids from from to to, or none of them
	// when any has already left from.
	UpdateStatus(ctx context.Context, ids []string, from, to orders.Status) error
	FindDiscountByCode(ctx context.Context, code string) (discountRule, error)
	FindDiscountByID(ctx context.Context, id string) (discountRule, error)
	// CreateOrders stores the orders and, when discountCodeID is set, counts
	// one redemption of that code, atomically.
	CreateOrders(ctx context.Context, list []orders.Order, discountCodeID string) error
	ChangeShift(ctx context.Context, customerID, companyID, shift string) (orders.Customer, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &orders.NotFoundError{Resource: resource, ID: id}
	}
	return err
}

func (r *gormRepository) FindCustomer(ctx context.Context, id string) (orders.Customer, error) {
	var m models.Customer
	err := r.db.WithContext(ctx).
		Preload("Memberships").
		Preload("Memberships.Company").
		Preload("Memberships.Company.Shifts").
		First(&m, "id = ?", id).Error
	if err != nil {
		return orders.Customer{}, notFound(err, "customer", id)
	}
	return customerToDomain(m), nil
}

func (r *gormRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]orders.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}
	if filter.Newest {
		q = q.Order("delivery_date DESC").Order("created_at DESC")
	} else {
		q = q.Order("delivery_date ASC").Order("created_at ASC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	out := make([]orders.Order, 0, len(rows))
	for _, m := range rows {
		out = append(out, orderToDomain(m))
	}
	return out, nil
}

func (r *gormRepository) FindOrders(ctx context.Context, ids []string) ([]orders.Order, error) {
	var rows []models.Order
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	out := make([]orders.Order, 0, len(rows))
	for _, m := range rows {
		out = append(out, orderToDomain(m))
	}
	return out, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, ids []string, from, to orders.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id IN ? AND status = ?", ids, string(from)).
			Update("status", string(to))
		if res.Error != nil {
			return fmt.Errorf("failed to update order status: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("%d of %d orders still %s: %w", res.RowsAffected, len(ids), from, orders.ErrInvalidTransition)
		}
		return nil
	})
}

func (r *gormRepository) FindDiscountByCode(ctx context.Context, code string) (discountRule, error) {
	var m models.DiscountCode
	err := r.db.WithContext(ctx).First(&m, "UPPER(code) = ?", strings.ToUpper(code)).Error
	if err != nil {
		return discountRule{}, notFound(err, "discount code", code)
	}
	return discountToDomain(m), nil
}

func (r *gormRepository) FindDiscountByID(ctx context.Context, id string) (discountRule, error) {
	var m models.DiscountCode
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return discountRule{}, notFound(err, "discount code", id)
	}
	return discountToDomain(m), nil
}

func (r *gormRepository) CreateOrders(ctx context.Context, list []orders.Order, discountCodeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows := make([]models.Order, 0, len(list))
		for _, o := range list {
			rows = append(rows, orderToModel(o, discountCodeID))
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create orders: %w", err)
		}
		if discountCodeID == "" {
			return nil
		}

		var code models.DiscountCode
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&code, "id = ?", discountCodeID).Error
		if err != nil {
			return notFound(err, "discount code", discountCodeID)
		}
		if code.MaxRedemptions > 0 && code.Redemptions >= code.MaxRedemptions {
			return &orders.ValidationError{Field: "discountCodeId", Message: "discount code has been fully redeemed"}
		}
		return tx.Model(&code).Update("redemptions", gorm.Expr("redemptions + 1")).Error
	})
}

func (r *gormRepository) ChangeShift(ctx context.Context, customerID, companyID, shift string) (orders.Customer, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CompanyShift{}).
			Where("company_id = ? AND shift = ?", companyID, shift).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &orders.ValidationError{Field: "shift", Message: fmt.Sprintf("company has no %s shift", shift)}
		}

		res := tx.Model(&models.Membership{}).
			Where("customer_id = ? AND company_id = ? AND status = ?", customerID, companyID, orders.MembershipActive).
			Update("shift", shift)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &orders.NotFoundError{Resource: "active membership", ID: companyID}
		}
		return nil
	})
	if err != nil {
		return orders.Customer{}, err
	}
	return r.FindCustomer(ctx, customerID)
}
