package bootstrap

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/config"
	"github.com/RachdianZulkarnain/final-project-api/internal/database"
	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/expiration"
	"github.com/RachdianZulkarnain/final-project-api/internal/modules/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		PaymentExpiration: 100 * time.Millisecond,
		Expiration: config.ExpirationConfig{
			MaxAttempts:       3,
			BackoffBase:       10 * time.Millisecond,
			BackoffMax:        50 * time.Millisecond,
			PollInterval:      10 * time.Millisecond,
			VisibilityTimeout: time.Second,
			Workers:           2,
			SweepSpec:         "@every 1h",
		},
		CalendarCacheTTL:      time.Minute,
		CalendarCacheSize:     100,
		NotificationBufferLen: 8,
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:bootstrap_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestUnpaidPaymentExpiresAndReleasesStock(t *testing.T) {
	cfg := testConfig()
	db := openTestDB(t)

	tenant := domain.User{Email: "tenant@example.com", FirstName: "Tia", Role: domain.RoleTenant}
	guest := domain.User{Email: "guest@example.com", FirstName: "Gus", Role: domain.RoleUser}
	require.NoError(t, db.Create(&tenant).Error)
	require.NoError(t, db.Create(&guest).Error)
	property := domain.Property{TenantID: tenant.ID, Title: "Seaside Villa"}
	require.NoError(t, db.Create(&property).Error)
	room := domain.Room{PropertyID: property.ID, Name: "Ocean Suite", Type: domain.RoomSuite, Price: 100, Stock: 1}
	require.NoError(t, db.Create(&room).Error)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue, closeQueue, err := Queue(ctx, cfg, nil)
	require.NoError(t, err)
	defer closeQueue()

	notifier, producer := Notifier(ctx, cfg, db, nil, "test", nil)
	assert.Nil(t, producer)
	svc := NewServices(cfg, db, queue, notifier, nil)
	defer svc.CalendarCache.Stop()

	wait, err := StartExpiration(ctx, cfg, queue, svc, nil)
	require.NoError(t, err)

	p, err := svc.Payment.CreatePayment(ctx, domain.Actor{ID: guest.ID, Role: domain.RoleUser}, payment.CreateRequest{
		RoomID: room.ID, TotalPrice: 300, Duration: 3,
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		var got domain.Payment
		if err := db.Where("uuid = ?", p.UUID).First(&got).Error; err != nil {
			return false
		}
		return got.Status == domain.PaymentExpired
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	wait()

	var reloaded domain.Room
	require.NoError(t, db.First(&reloaded, room.ID).Error)
	assert.Equal(t, 1, reloaded.Stock)

	var notes []domain.Notification
	require.NoError(t, db.Where("user_id = ?", guest.ID).Order("id asc").Find(&notes).Error)
	require.Len(t, notes, 2)
	assert.Equal(t, domain.NotifUploadPaymentProof, notes[0].Type)
	assert.Equal(t, domain.NotifPaymentExpired, notes[1].Type)
}

func TestCalendarFollowsStockChangesFromPayments(t *testing.T) {
	cfg := testConfig()
	cfg.PaymentExpiration = time.Hour
	db := openTestDB(t)

	tenant := domain.User{Email: "tenant@example.com", FirstName: "Tia", Role: domain.RoleTenant}
	guest := domain.User{Email: "guest@example.com", FirstName: "Gus", Role: domain.RoleUser}
	require.NoError(t, db.Create(&tenant).Error)
	require.NoError(t, db.Create(&guest).Error)
	property := domain.Property{TenantID: tenant.ID, Title: "Seaside Villa"}
	require.NoError(t, db.Create(&property).Error)
	room := domain.Room{PropertyID: property.ID, Name: "Ocean Suite", Type: domain.RoomSuite, Price: 100, Stock: 1}
	require.NoError(t, db.Create(&room).Error)

	ctx := context.Background()
	svc := NewServices(cfg, db, expiration.NewMemoryQueue(time.Minute), nil, nil)
	defer svc.CalendarCache.Stop()

	month := time.Now().UTC()
	cal, err := svc.Calendar.Generate(ctx, room.ID, month)
	require.NoError(t, err)
	require.Equal(t, 1, cal.Stock)
	require.True(t, cal.Days[0].Available)

	p, err := svc.Payment.CreatePayment(ctx, domain.Actor{ID: guest.ID, Role: domain.RoleUser}, payment.CreateRequest{
		RoomID: room.ID, TotalPrice: 100, Duration: 1,
	})
	require.NoError(t, err)

	cal, err = svc.Calendar.Generate(ctx, room.ID, month)
	require.NoError(t, err)
	assert.Equal(t, 0, cal.Stock)
	for _, day := range cal.Days {
		assert.False(t, day.Available, day.Date)
	}

	require.NoError(t, db.Model(&domain.Payment{}).Where("uuid = ?", p.UUID).
		Update("expired_at", time.Now().UTC().Add(-time.Minute)).Error)
	expired, err := svc.Payment.ExpirePayment(ctx, p.UUID)
	require.NoError(t, err)
	require.True(t, expired)

	cal, err = svc.Calendar.Generate(ctx, room.ID, month)
	require.NoError(t, err)
	assert.Equal(t, 1, cal.Stock)
	assert.True(t, cal.Days[0].Available)
}

func TestStartExpirationRejectsBadSweepSpec(t *testing.T) {
	cfg := testConfig()
	cfg.Expiration.SweepSpec = "whenever"
	db := openTestDB(t)

	queue, _, err := Queue(context.Background(), cfg, nil)
	require.NoError(t, err)
	svc := NewServices(cfg, db, queue, nil, nil)
	defer svc.CalendarCache.Stop()

	_, err = StartExpiration(context.Background(), cfg, queue, svc, nil)
	assert.Error(t, err)
}
