package peakseason

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/database"
	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/modules/calendar"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/apperr"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/daterange"
	"github.com/RachdianZulkarnain/final-project-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) Create(ctx context.Context, rate *domain.PeakSeasonRate) error {
	return m.Called(ctx, rate).Error(0)
}

func (m *MockRateRepository) Update(ctx context.Context, rate *domain.PeakSeasonRate) error {
	return m.Called(ctx, rate).Error(0)
}

func (m *MockRateRepository) SoftDelete(ctx context.Context, id, roomID int64) error {
	return m.Called(ctx, id, roomID).Error(0)
}

func (m *MockRateRepository) GetByID(ctx context.Context, id int64) (*domain.PeakSeasonRate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeakSeasonRate), args.Error(1)
}

func (m *MockRateRepository) List(ctx context.Context, f repository.OverrideFilter) ([]domain.PeakSeasonRate, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.PeakSeasonRate), args.Get(1).(int64), args.Error(2)
}

type MockRoomReader struct {
	mock.Mock
}

func (m *MockRoomReader) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

type recordingInvalidator struct {
	rooms []int64
}

func (r *recordingInvalidator) InvalidateRoom(roomID int64) {
	r.rooms = append(r.rooms, roomID)
}

var (
	tenant = domain.Actor{ID: 10, Role: domain.RoleTenant}
	guest  = domain.Actor{ID: 20, Role: domain.RoleUser}
)

func ownedRoom() *domain.Room {
	return &domain.Room{ID: 1, Price: 100, Property: &domain.Property{ID: 3, TenantID: tenant.ID}}
}

func day(s string) time.Time {
	t, _ := time.Parse(daterange.DayLayout, s)
	return t
}

func TestCreate_Succeeds(t *testing.T) {
	rates := new(MockRateRepository)
	rooms := new(MockRoomReader)
	inv := &recordingInvalidator{}
	svc := NewService(rates, rooms, inv, nil)
	ctx := context.Background()

	rooms.On("GetByID", ctx, int64(1)).Return(ownedRoom(), nil)
	rates.On("Create", ctx, mock.MatchedBy(func(r *domain.PeakSeasonRate) bool {
		return r.RoomID == 1 && r.Price == 150 && r.StartDate.Equal(day("2025-03-05")) && r.EndDate.Equal(day("2025-03-08"))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.PeakSeasonRate).ID = 99
	}).Return(nil)

	rate, err := svc.Create(ctx, tenant, CreateRequest{RoomID: 1, Price: 150, StartDate: "2025-03-05", EndDate: "2025-03-08"})

	require.NoError(t, err)
	assert.Equal(t, int64(99), rate.ID)
	assert.Equal(t, []int64{1}, inv.rooms)
	rates.AssertExpectations(t)
}

func TestCreate_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		actor domain.Actor
		req   CreateRequest
		want  error
	}{
		{"guest", guest, CreateRequest{RoomID: 1, Price: 150, StartDate: "2025-03-05", EndDate: "2025-03-08"}, ErrForbidden},
		{"zero price", tenant, CreateRequest{RoomID: 1, Price: 0, StartDate: "2025-03-05", EndDate: "2025-03-08"}, ErrValidation},
		{"negative price", tenant, CreateRequest{RoomID: 1, Price: -5, StartDate: "2025-03-05", EndDate: "2025-03-08"}, ErrValidation},
		{"inverted range", tenant, CreateRequest{RoomID: 1, Price: 150, StartDate: "2025-03-08", EndDate: "2025-03-05"}, ErrValidation},
		{"bad date", tenant, CreateRequest{RoomID: 1, Price: 150, StartDate: "03/05/2025", EndDate: "2025-03-08"}, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rates := new(MockRateRepository)
			rooms := new(MockRoomReader)
			svc := NewService(rates, rooms, nil, nil)

			_, err := svc.Create(context.Background(), tc.actor, tc.req)

			assert.ErrorIs(t, err, tc.want)
			rates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_SingleDayRangeIsAccepted(t *testing.T) {
	rates := new(MockRateRepository)
	rooms := new(MockRoomReader)
	svc := NewService(rates, rooms, nil, nil)
	ctx := context.Background()

	rooms.On("GetByID", ctx, int64(1)).Return(ownedRoom(), nil)
	rates.On("Create", ctx, mock.Anything).Return(nil)

	_, err := svc.Create(ctx, tenant, CreateRequest{RoomID: 1, Price: 150, StartDate: "2025-03-05", EndDate: "2025-03-05"})
	assert.NoError(t, err)
}

func TestCreate_RoomChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown room", func(t *testing.T) {
		rooms := new(MockRoomReader)
		rooms.On("GetByID", ctx, int64(1)).Return(nil, repository.ErrNotFound)
		svc := NewService(new(MockRateRepository), rooms, nil, nil)

		_, err := svc.Create(ctx, tenant, CreateRequest{RoomID: 1, Price: 150, StartDate: "2025-03-05", EndDate: "2025-03-08"})
		assert.ErrorIs(t, err, ErrRoomNotFound)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("room of another tenant", func(t *testing.T) {
		room := ownedRoom()
		room.Property.TenantID = 77
		rooms := new(MockRoomReader)
		rooms.On("GetByID", ctx, int64(1)).Return(room, nil)
		svc := NewService(new(MockRateRepository), rooms, nil, nil)

		_, err := svc.Create(ctx, tenant, CreateRequest{RoomID: 1, Price: 150, StartDate: "2025-03-05", EndDate: "2025-03-08"})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestCreate_OverlapBecomesConflict(t *testing.T) {
	rates := new(MockRateRepository)
	rooms := new(MockRoomReader)
	inv := &recordingInvalidator{}
	svc := NewService(rates, rooms, inv, nil)
	ctx := context.Background()

	conflict := &daterange.ConflictError{
		Candidate: daterange.Range{Start: day("2025-03-01"), End: day("2025-03-10")},
		Existing:  daterange.Entry{ID: 4, Range: daterange.Range{Start: day("2025-03-05"), End: day("2025-03-08")}},
	}
	rooms.On("GetByID", ctx, int64(1)).Return(ownedRoom(), nil)
	rates.On("Create", ctx, mock.Anything).Return(conflict)

	_, err := svc.Create(ctx, tenant, CreateRequest{RoomID: 1, Price: 180, StartDate: "2025-03-01", EndDate: "2025-03-10"})

	assert.ErrorIs(t, err, ErrOverlap)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Empty(t, inv.rooms)
}

func TestUpdate_PartialKeepsOtherFields(t *testing.T) {
	rates := new(MockRateRepository)
	inv := &recordingInvalidator{}
	svc := NewService(rates, new(MockRoomReader), inv, nil)
	ctx := context.Background()

	existing := &domain.PeakSeasonRate{ID: 5, RoomID: 1, Price: 150, StartDate: day("2025-03-05"), EndDate: day("2025-03-08"), Room: ownedRoom()}
	rates.On("GetByID", ctx, int64(5)).Return(existing, nil)
	rates.On("Update", ctx, mock.Anything).Return(nil)

	newEnd := "2025-03-12"
	rate, err := svc.Update(ctx, tenant, 5, UpdateRequest{EndDate: &newEnd})

	require.NoError(t, err)
	assert.Equal(t, int64(150), rate.Price)
	assert.True(t, rate.StartDate.Equal(day("2025-03-05")))
	assert.True(t, rate.EndDate.Equal(day("2025-03-12")))
	assert.Equal(t, []int64{1}, inv.rooms)
}

func TestUpdate_Rejections(t *testing.T) {
	ctx := context.Background()
	zero := int64(0)
	early := "2025-03-01"

	t.Run("not found", func(t *testing.T) {
		rates := new(MockRateRepository)
		rates.On("GetByID", ctx, int64(5)).Return(nil, repository.ErrNotFound)
		svc := NewService(rates, new(MockRoomReader), nil, nil)

		_, err := svc.Update(ctx, tenant, 5, UpdateRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("foreign rate", func(t *testing.T) {
		room := ownedRoom()
		room.Property.TenantID = 77
		rates := new(MockRateRepository)
		rates.On("GetByID", ctx, int64(5)).Return(&domain.PeakSeasonRate{ID: 5, RoomID: 1, Room: room}, nil)
		svc := NewService(rates, new(MockRoomReader), nil, nil)

		_, err := svc.Update(ctx, tenant, 5, UpdateRequest{})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("zero price", func(t *testing.T) {
		rates := new(MockRateRepository)
		rates.On("GetByID", ctx, int64(5)).Return(&domain.PeakSeasonRate{ID: 5, RoomID: 1, Price: 150, StartDate: day("2025-03-05"), EndDate: day("2025-03-08"), Room: ownedRoom()}, nil)
		svc := NewService(rates, new(MockRoomReader), nil, nil)

		_, err := svc.Update(ctx, tenant, 5, UpdateRequest{Price: &zero})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("end before start", func(t *testing.T) {
		rates := new(MockRateRepository)
		rates.On("GetByID", ctx, int64(5)).Return(&domain.PeakSeasonRate{ID: 5, RoomID: 1, Price: 150, StartDate: day("2025-03-05"), EndDate: day("2025-03-08"), Room: ownedRoom()}, nil)
		svc := NewService(rates, new(MockRoomReader), nil, nil)

		_, err := svc.Update(ctx, tenant, 5, UpdateRequest{EndDate: &early})
		assert.ErrorIs(t, err, ErrValidation)
		rates.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	rates := new(MockRateRepository)
	inv := &recordingInvalidator{}
	svc := NewService(rates, new(MockRoomReader), inv, nil)
	ctx := context.Background()

	rates.On("GetByID", ctx, int64(5)).Return(&domain.PeakSeasonRate{ID: 5, RoomID: 1, Room: ownedRoom()}, nil)
	rates.On("SoftDelete", ctx, int64(5), int64(1)).Return(nil)

	rate, err := svc.Delete(ctx, tenant, 5)

	require.NoError(t, err)
	assert.True(t, rate.IsDeleted)
	assert.Equal(t, []int64{1}, inv.rooms)
}

func TestDelete_ConcurrentlyRemoved(t *testing.T) {
	rates := new(MockRateRepository)
	svc := NewService(rates, new(MockRoomReader), nil, nil)
	ctx := context.Background()

	rates.On("GetByID", ctx, int64(5)).Return(&domain.PeakSeasonRate{ID: 5, RoomID: 1, Room: ownedRoom()}, nil)
	rates.On("SoftDelete", ctx, int64(5), int64(1)).Return(repository.ErrNotFound)

	_, err := svc.Delete(ctx, tenant, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_AppliesDefaults(t *testing.T) {
	rates := new(MockRateRepository)
	svc := NewService(rates, new(MockRoomReader), nil, nil)
	ctx := context.Background()

	rates.On("List", ctx, mock.MatchedBy(func(f repository.OverrideFilter) bool {
		return f.TenantID == tenant.ID && f.Page == 1 && f.Take == 10 &&
			f.SortBy == "createdAt" && f.SortOrder == "desc" &&
			f.From != nil && f.From.Equal(day("2025-03-01")) && f.To == nil && f.Search == "suite"
	})).Return([]domain.PeakSeasonRate{{ID: 1}}, int64(11), nil)

	res, err := svc.List(ctx, tenant, ListQuery{StartDate: "2025-03-01", Search: "  suite "})

	require.NoError(t, err)
	assert.Len(t, res.Data, 1)
	assert.Equal(t, int64(11), res.Meta.Total)
	assert.Equal(t, 10, res.Meta.Take)
}

func TestList_RequiresTenant(t *testing.T) {
	svc := NewService(new(MockRateRepository), new(MockRoomReader), nil, nil)
	_, err := svc.List(context.Background(), guest, ListQuery{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_RepositoryErrorsPassThrough(t *testing.T) {
	boom := errors.New("db down")
	rooms := new(MockRoomReader)
	rooms.On("GetByID", mock.Anything, int64(1)).Return(nil, boom)
	svc := NewService(new(MockRateRepository), rooms, nil, nil)

	_, err := svc.Create(context.Background(), tenant, CreateRequest{RoomID: 1, Price: 150, StartDate: "2025-03-05", EndDate: "2025-03-08"})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestCreate_RefreshesCachedCalendar(t *testing.T) {
	dsn := fmt.Sprintf("file:peakseason_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	owner := domain.User{Email: "owner@example.com", FirstName: "Olga", Role: domain.RoleTenant}
	require.NoError(t, db.Create(&owner).Error)
	property := domain.Property{TenantID: owner.ID, Title: "Hill Lodge"}
	require.NoError(t, db.Create(&property).Error)
	room := domain.Room{PropertyID: property.ID, Name: "Loft", Type: domain.RoomDeluxe, Price: 100, Stock: 1}
	require.NoError(t, db.Create(&room).Error)

	roomRepo := repository.NewRoomRepository(db)
	rateRepo := repository.NewPeakSeasonRepository(db)
	cache := calendar.NewCache(100, time.Minute)
	defer cache.Stop()
	cal := calendar.NewService(roomRepo, rateRepo, repository.NewNonAvailabilityRepository(db), cache, nil)
	svc := NewService(rateRepo, roomRepo, cache, nil)
	ctx := context.Background()
	actor := domain.Actor{ID: owner.ID, Role: domain.RoleTenant}
	month := day("2025-03-01")

	before, err := cal.Generate(ctx, room.ID, month)
	require.NoError(t, err)
	assert.Equal(t, int64(100), before.Days[5].Price)

	_, err = svc.Create(ctx, actor, CreateRequest{RoomID: room.ID, Price: 150, StartDate: "2025-03-05", EndDate: "2025-03-08"})
	require.NoError(t, err)

	after, err := cal.Generate(ctx, room.ID, month)
	require.NoError(t, err)
	assert.Equal(t, int64(150), after.Days[5].Price)
	assert.True(t, after.Days[5].IsPeakSeason)

	_, err = svc.Create(ctx, actor, CreateRequest{RoomID: room.ID, Price: 170, StartDate: "2025-03-08", EndDate: "2025-03-09"})
	assert.ErrorIs(t, err, ErrOverlap)
}
