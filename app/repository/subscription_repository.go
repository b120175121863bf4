package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/internal/pkg/billingcycle"
	"github.com/subtally/subtally/internal/pkg/reminder"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Tier.Product").Preload("User").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByUserID(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("Tier.Product").
		Where("user_id = ?", userID).Order("started_at DESC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) GetActiveByUserID(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("Tier.Product").
		Where("user_id = ? AND active = ?", userID, true).
		Order("started_at DESC").Find(&subs).Error
	return subs, err
}

// Unsubscribe soft-cancels a subscription: active goes false and deleted_at
// is set, both exactly once. The row itself is never removed so billing
// history stays computable.
func (r *subscriptionRepository) Unsubscribe(id uint, at time.Time) error {
	result := r.db.Model(&models.Subscription{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]any{"active": false, "deleted_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrAlreadyUnsubscribed
	}
	return nil
}

func (r *subscriptionRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("active = ?", true).Count(&count).Error
	return count, err
}

// ListActiveSubscriptions reads the reminder batch's snapshot: every active
// subscription joined with its live tier, product and owner. One query
// (plus preloads) so the batch acts on a consistent view.
func (r *subscriptionRepository) ListActiveSubscriptions() ([]reminder.Item, error) {
	var subs []models.Subscription
	err := r.db.Preload("Tier.Product").Preload("User").
		Where("active = ?", true).Find(&subs).Error
	if err != nil {
		return nil, err
	}

	items := make([]reminder.Item, 0, len(subs))
	for _, sub := range subs {
		// Stored periods are validated at the write boundary; anything
		// that slipped past it is handed through raw so the batch reports
		// it instead of guessing.
		price, period := sub.BillingTerms()
		item := reminder.Item{
			ID:             sub.ID,
			DisplayName:    sub.DisplayName(),
			Contact:        sub.User.Email,
			StartedAt:      sub.StartedAt,
			Price:          price,
			Period:         billingcycle.Period(period),
			LastRemindedAt: sub.LastRemindedAt,
		}
		if sub.Tier != nil {
			item.ProductURL = sub.Tier.Product.URL
		}
		items = append(items, item)
	}
	return items, nil
}

// MarkReminded persists the per-subscription dedup marker.
func (r *subscriptionRepository) MarkReminded(id uint, at time.Time) error {
	return r.db.Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("last_reminded_at", at).Error
}
