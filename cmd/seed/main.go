// Command seed loads catalog fixtures from a YAML file into the database.
// It is idempotent over slugs: travels that already exist are skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ghodss/yaml"

	"github.com/ArtemDidyk-Dev/travel-api/internal/config"
	"github.com/ArtemDidyk-Dev/travel-api/internal/domain"
	"github.com/ArtemDidyk-Dev/travel-api/internal/repository/postgres"
	"github.com/ArtemDidyk-Dev/travel-api/internal/service"
)

type tourFixture struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Price     string `json:"price"`
}

type travelFixture struct {
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	NumberOfDays int           `json:"number_of_days"`
	IsPublic     bool          `json:"is_public"`
	Tours        []tourFixture `json:"tours"`
}

type fixtureFile struct {
	Travels []travelFixture `json:"travels"`
}

func main() {
	path := flag.String("file", "fixtures/travels.yaml", "path to the fixture file")
	flag.Parse()

	cfg := config.Load()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read fixtures: %v", err)
	}
	var fixtures fixtureFile
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		log.Fatalf("parse fixtures: %v", err)
	}

	travelRepo := postgres.NewTravelRepo(db)
	tourRepo := postgres.NewTourRepo(db)
	travels := service.NewTravelService(travelRepo)

	ctx := context.Background()
	for _, fixture := range fixtures.Travels {
		travel, err := travels.Create(ctx, service.TravelCreateInput{
			Name:         fixture.Name,
			Description:  fixture.Description,
			NumberOfDays: fixture.NumberOfDays,
			IsPublic:     fixture.IsPublic,
		})
		if err != nil {
			log.Printf("skip travel %q: %v", fixture.Name, err)
			continue
		}

		for _, tf := range fixture.Tours {
			startDate, err := time.Parse("2006-01-02", tf.StartDate)
			if err != nil {
				log.Fatalf("travel %q tour %q: bad start_date: %v", fixture.Name, tf.Name, err)
			}
			endDate, err := time.Parse("2006-01-02", tf.EndDate)
			if err != nil {
				log.Fatalf("travel %q tour %q: bad end_date: %v", fixture.Name, tf.Name, err)
			}
			price, err := domain.ParseMinorUnits(tf.Price)
			if err != nil {
				log.Fatalf("travel %q tour %q: bad price: %v", fixture.Name, tf.Name, err)
			}

			if _, err := tourRepo.Create(ctx, &domain.Tour{
				TravelID:  travel.ID,
				Name:      tf.Name,
				StartDate: startDate,
				EndDate:   endDate,
				Price:     price,
			}); err != nil {
				log.Fatalf("create tour %q: %v", tf.Name, err)
			}
		}
		fmt.Printf("seeded travel %q (%s) with %d tours\n", travel.Name, travel.Slug, len(fixture.Tours))
	}
}
