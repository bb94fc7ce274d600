package main

import (
	"log"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/config"
	"github.com/RachdianZulkarnain/final-project-api/internal/database"
	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/daterange"
	jwtsvc "github.com/RachdianZulkarnain/final-project-api/internal/pkg/jwt"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	for _, table := range []string{"notifications", "payments", "peak_season_rates", "room_non_availabilities", "rooms", "properties", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s failed: %v", table, err)
		}
	}

	var tenant, guest domain.User
	err = db.Transaction(func(tx *gorm.DB) error {
		tenant = domain.User{Email: "tenant@example.com", FirstName: "Tara", LastName: "Host", Role: domain.RoleTenant}
		guest = domain.User{Email: "guest@example.com", FirstName: "Gilang", Role: domain.RoleUser}
		if err := tx.Create(&[]*domain.User{&tenant, &guest}).Error; err != nil {
			return err
		}

		properties := []domain.Property{
			{TenantID: tenant.ID, Title: "Seaside Villa", Slug: "seaside-villa"},
			{TenantID: tenant.ID, Title: "Hill Lodge", Slug: "hill-lodge"},
		}
		if err := tx.Create(&properties).Error; err != nil {
			return err
		}

		rooms := []domain.Room{
			{PropertyID: properties[0].ID, Name: "Ocean Suite", Type: domain.RoomSuite, Price: 1_500_000, Stock: 2},
			{PropertyID: properties[0].ID, Name: "Garden Deluxe", Type: domain.RoomDeluxe, Price: 900_000, Stock: 3},
			{PropertyID: properties[1].ID, Name: "Loft", Type: domain.RoomStandard, Price: 450_000, Stock: 1},
		}
		if err := tx.Create(&rooms).Error; err != nil {
			return err
		}

		now := daterange.Normalize(time.Now())
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		rates := []domain.PeakSeasonRate{
			{RoomID: rooms[0].ID, Price: 2_000_000, StartDate: monthStart.AddDate(0, 0, 9), EndDate: monthStart.AddDate(0, 0, 13)},
			{RoomID: rooms[1].ID, Price: 1_100_000, StartDate: monthStart.AddDate(0, 0, 19), EndDate: monthStart.AddDate(0, 0, 20)},
		}
		if err := tx.Create(&rates).Error; err != nil {
			return err
		}

		blocks := []domain.RoomNonAvailability{
			{RoomID: rooms[2].ID, Reason: "Renovation", StartDate: monthStart.AddDate(0, 0, 4), EndDate: monthStart.AddDate(0, 0, 7)},
		}
		return tx.Create(&blocks).Error
	})
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	j := jwtsvc.New(cfg.JWTSecret, 7*24*time.Hour)
	tenantToken, err := j.GenerateToken(tenant.ID, string(domain.RoleTenant))
	if err != nil {
		log.Fatal(err)
	}
	guestToken, err := j.GenerateToken(guest.ID, string(domain.RoleUser))
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("seed completed: tenant_id=%d guest_id=%d", tenant.ID, guest.ID)
	log.Printf("tenant token: %s", tenantToken)
	log.Printf("guest token: %s", guestToken)
}
