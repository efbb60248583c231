package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/forte-savings/backend/internal/config"
	"github.com/forte-savings/backend/internal/database"
	"github.com/forte-savings/backend/internal/models"
	"github.com/forte-savings/backend/internal/services"
)

// Seeds a local database with a demo tenant: two users, two projects and
// a spread of savings records so the dashboard has something to show.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config: ", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectPermission{},
		&models.SavingsRecord{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	fmt.Println("✓ Database migrated successfully")

	admin := models.User{
		UUID:   uuid.NewString(),
		Email:  "admin@forte.example",
		Name:   "Forte Admin",
		Role:   models.RoleAdmin,
		Status: models.StatusActive,
	}
	if err := admin.SetPassword("admin12345"); err != nil {
		log.Fatal(err)
	}
	user := models.User{
		UUID:   uuid.NewString(),
		Email:  "analyst@forte.example",
		Name:   "Savings Analyst",
		Role:   models.RoleUser,
		Status: models.StatusActive,
	}
	if err := user.SetPassword("analyst12345"); err != nil {
		log.Fatal(err)
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("seed admin: ", err)
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal("seed user: ", err)
	}

	projectSvc := services.NewProjectService(db)
	savingsSvc := services.NewSavingsService(db)

	end := time.Now().AddDate(1, 0, 0)
	p1, err := projectSvc.Create(user, services.ProjectInput{
		FRN:      "FRN-2025-001",
		Name:     "Logistics Optimization",
		Customer: "Acme Industries",
		EndDate:  &end,
	})
	if err != nil {
		log.Fatal("seed project: ", err)
	}
	p2, err := projectSvc.Create(admin, services.ProjectInput{
		FRN:      "FRN-2025-002",
		Name:     "Supplier Renegotiation",
		Customer: "Globex",
		EndDate:  &end,
	})
	if err != nil {
		log.Fatal("seed project: ", err)
	}

	seedRecords := []services.RecordInput{
		{ProjectID: p1.ID, Date: time.Now().AddDate(0, 0, -3), Type: models.TypeSavings, Category: "Freight", Price: 100, Unit: 3, Currency: "TRY"},
		{ProjectID: p1.ID, Date: time.Now().AddDate(0, -1, 0), Type: models.TypeCostAvoidance, Category: "Warehousing", Price: 250, Unit: 2, Currency: "USD"},
		{ProjectID: p2.ID, Date: time.Now().AddDate(0, 0, -10), Type: models.TypeSavings, Category: "Raw Materials", Price: 80, Unit: 10, Currency: "EUR"},
	}
	for _, in := range seedRecords {
		creator := user
		if in.ProjectID == p2.ID {
			creator = admin
		}
		if _, err := savingsSvc.Create(creator, in); err != nil {
			log.Fatal("seed record: ", err)
		}
	}

	fmt.Println("✓ Seeded demo users, projects and savings records")
}
