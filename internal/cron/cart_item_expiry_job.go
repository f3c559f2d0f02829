package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

const defaultCartItemRetentionDays = 14

type staleCartItemPruner interface {
	DeleteStaleItemsBefore(tx *gorm.DB, cutoff time.Time) (int64, error)
}

type CartItemExpiryJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    staleCartItemPruner
	RetentionDays int
}

// NewCartItemExpiryJob empties carts nobody has touched within the retention
// window. The cart row itself is kept for the user's next session.
func NewCartItemExpiryJob(params CartItemExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	days := params.RetentionDays
	if days <= 0 {
		days = defaultCartItemRetentionDays
	}
	return &cartItemExpiryJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		days: days,
		now:  time.Now,
	}, nil
}

type cartItemExpiryJob struct {
	logg *logger.Logger
	db   txRunner
	repo staleCartItemPruner
	days int
	now  func() time.Time
}

func (j *cartItemExpiryJob) Name() string { return "cart-item-expiry" }

func (j *cartItemExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteStaleItemsBefore(tx, cutoff)
		deleted = rows
		return err
	})
	if err != nil {
		return fmt.Errorf("cart item expiry: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":             cutoff,
		"cart_items_deleted": deleted,
	}), "stale cart items removed")
	return nil
}
