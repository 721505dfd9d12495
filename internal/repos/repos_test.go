package repos_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chidi/internal/domain"
	"chidi/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDBSeedsDemoShop(t *testing.T) {
	db := memdb(t)

	products, err := repos.NewProductRepo(db).List()
	require.NoError(t, err)
	require.NotEmpty(t, products)
	for _, p := range products {
		if p.ID == 4 {
			assert.Equal(t, "Wireless Earbuds", p.Name)
			assert.Equal(t, domain.StockOut, p.Status)
		}
	}

	c, err := repos.NewCustomerRepo(db).Get(1)
	require.NoError(t, err)
	assert.Equal(t, 12, c.TotalOrders)
	assert.Equal(t, "₦285,000", c.TotalSpent.String())
	assert.Equal(t, domain.CustomerVIP, c.Status)

	orders, err := repos.NewOrderRepo(db).List()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Len(t, orders[1].Items, 2)
	assert.Equal(t, "Adire Kaftan", orders[1].Items[0].ProductName)

	u, err := repos.NewUserRepo(db).ByEmail("OWNER@chidi.test")
	require.NoError(t, err)
	assert.Equal(t, "OWNER", u.Role)
	assert.Empty(t, u.ExternalID)
}

func TestProductWritesInTx(t *testing.T) {
	db := memdb(t)
	r := repos.NewProductRepo(db)

	err := repos.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if err := r.Insert(tx, domain.Product{ID: 100, Name: "Okrika Jeans", Stock: 5, Price: 7000, Status: domain.StockGood}); err != nil {
			return err
		}
		return r.Delete(tx, []int{1, 2})
	})
	require.NoError(t, err)

	_, err = r.Get(1)
	assert.Error(t, err)
	p, err := r.Get(100)
	require.NoError(t, err)
	assert.Equal(t, "₦7,000", p.Price.String())
}

func TestWithTxRollsBack(t *testing.T) {
	db := memdb(t)
	r := repos.NewProductRepo(db)
	before, err := r.List()
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repos.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if err := r.Insert(tx, domain.Product{ID: 200, Name: "Tmp", Status: domain.StockOut}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNotificationFeedOrder(t *testing.T) {
	db := memdb(t)
	r := repos.NewNotificationRepo(db)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.Insert(db, domain.Notification{ID: "a", Type: domain.NotifyActivity, Title: "A", Timestamp: "Just now", Priority: domain.PriorityLow, CreatedAt: base}))
	require.NoError(t, r.Insert(db, domain.Notification{ID: "b", Type: domain.NotifyStock, Title: "B", Timestamp: "Just now", Priority: domain.PriorityHigh, ProductID: 4, CreatedAt: base.Add(time.Second)}))
	require.NoError(t, r.MarkRead(db, "a"))

	feed, err := r.List()
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "b", feed[0].ID)
	assert.Equal(t, 4, feed[0].ProductID)
	assert.True(t, feed[1].Read)
	assert.True(t, feed[1].CreatedAt.Equal(base))

	require.NoError(t, r.Delete(db, "b"))
	require.NoError(t, r.DeleteAll(db))
	feed, err = r.List()
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestPasswordResetConsumedOnce(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	require.NoError(t, users.CreateReset(repos.PasswordReset{ID: "r1", UserID: "u-owner", TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour).Unix()}))

	require.NoError(t, users.ConsumeReset("r1", "u-owner", "newhash"))
	assert.ErrorIs(t, users.ConsumeReset("r1", "u-owner", "other"), repos.ErrResetUsed)

	u, err := users.ByID("u-owner")
	require.NoError(t, err)
	assert.Equal(t, "newhash", u.Hash)
}

func TestLoadFixturesRejectsBadMoney(t *testing.T) {
	_, err := repos.LoadFixtures([]byte("products:\n  - id: 1\n    price: \"₦1.5\"\n"))
	assert.Error(t, err)
}
