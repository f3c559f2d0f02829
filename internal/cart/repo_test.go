package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/fooddash-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddash-backend/pkg/db/models"
)

func seedCart(t *testing.T, conn *gorm.DB, repo *Repository, cartTouched, itemTouched time.Time) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	cart := &models.Cart{UserID: uuid.New()}
	require.NoError(t, repo.Create(ctx, cart))
	item := &models.CartItem{CartID: cart.ID, ProductID: uuid.New(), StoreID: uuid.New(), Quantity: 1}
	require.NoError(t, repo.CreateItem(ctx, item))
	require.NoError(t, conn.Model(&models.Cart{}).Where("id = ?", cart.ID).UpdateColumn("updated_at", cartTouched).Error)
	require.NoError(t, conn.Model(&models.CartItem{}).Where("id = ?", item.ID).UpdateColumn("updated_at", itemTouched).Error)
	return cart.ID
}

func TestDeleteStaleItemsBeforeEmptiesAbandonedCarts(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	cutoff := time.Now().UTC().AddDate(0, 0, -14)
	old := cutoff.Add(-48 * time.Hour)
	fresh := cutoff.Add(time.Hour)

	abandoned := seedCart(t, conn, repo, old, old)
	activeItems := seedCart(t, conn, repo, old, fresh)
	activeHeader := seedCart(t, conn, repo, fresh, old)

	deleted, err := repo.DeleteStaleItemsBefore(conn, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var carts []models.Cart
	require.NoError(t, conn.Find(&carts).Error)
	ids := make([]uuid.UUID, 0, len(carts))
	for _, c := range carts {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{abandoned, activeItems, activeHeader}, ids)

	countItems := func(cartID uuid.UUID) int64 {
		var n int64
		require.NoError(t, conn.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&n).Error)
		return n
	}
	assert.Zero(t, countItems(abandoned))
	assert.Equal(t, int64(1), countItems(activeItems))
	assert.Equal(t, int64(1), countItems(activeHeader))
}

func TestDeleteStaleItemsBeforeKeepsUsersCart(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	cutoff := time.Now().UTC()
	cartID := seedCart(t, conn, repo, cutoff.Add(-time.Hour), cutoff.Add(-time.Hour))

	var before models.Cart
	require.NoError(t, conn.First(&before, "id = ?", cartID).Error)

	_, err := repo.DeleteStaleItemsBefore(nil, cutoff)
	require.NoError(t, err)

	after, err := repo.FindByUser(context.Background(), before.UserID)
	require.NoError(t, err)
	assert.Equal(t, cartID, after.ID)
	assert.Empty(t, after.Items)
}

func TestDeleteStaleItemsBeforeNoop(t *testing.T) {
	conn := dbtest.Open(t)
	deleted, err := NewRepository(conn).DeleteStaleItemsBefore(nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
