// Command admin runs operational tasks against the database: applying
// migrations and seeding the program catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/fitzone/fitzone/config"
	"github.com/fitzone/fitzone/core/claims"
	"github.com/fitzone/fitzone/core/program"
	"github.com/fitzone/fitzone/core/user"
	"github.com/fitzone/fitzone/database"
	"github.com/fitzone/fitzone/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	if len(os.Args) < 2 {
		return errors.New("usage: admin [migrate|seed]")
	}

	const prefix = "FITZONE"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("database is not ready: %w", err)
	}

	switch os.Args[1] {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		log.Info("migrations complete")
		return nil

	case "seed":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		if err := seed(ctx, db); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		log.Info("seed complete")
		return nil

	default:
		return fmt.Errorf("unknown command %q", os.Args[1])
	}
}

func seed(ctx context.Context, db *sqlx.DB) error {
	return database.Transaction(db, func(tx sqlx.ExtContext) error {
		if err := seedAdmin(ctx, tx); err != nil {
			return err
		}
		return seedPrograms(ctx, tx)
	})
}

func seedAdmin(ctx context.Context, tx sqlx.ExtContext) error {
	pass := os.Getenv("FITZONE_ADMIN_PASSWORD")
	if pass == "" {
		return errors.New("FITZONE_ADMIN_PASSWORD must be set to seed the admin user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := user.User{
		ID:           validate.GenerateID(),
		Name:         "FitZone Admin",
		Email:        "admin@fitzone.in",
		Role:         claims.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return user.Create(ctx, tx, admin)
}

func seedPrograms(ctx context.Context, tx sqlx.ExtContext) error {
	now := time.Now().UTC()

	type seedEntry struct {
		program  program.Program
		schedule []program.Schedule
	}

	entries := []seedEntry{
		{
			program: program.Program{
				Title:           "Strength Foundations",
				Subtitle:        "Barbell basics done right",
				Description:     "A twelve week introduction to compound lifting with coached technique work.",
				ImageURL:        "/images/programs/strength-foundations.jpg",
				Duration:        "12 weeks",
				Level:           "Beginner",
				Category:        "strength",
				MaxParticipants: 12,
				Price:           4500,
			},
			schedule: []program.Schedule{
				{Day: "Monday", StartTime: "07:00", Spots: 12, Kind: "group", Focus: "lower body"},
				{Day: "Thursday", StartTime: "07:00", Spots: 12, Kind: "group", Focus: "upper body"},
			},
		},
		{
			program: program.Program{
				Title:           "HIIT Express",
				Subtitle:        "Forty five minutes, no excuses",
				Description:     "High intensity intervals for people who want cardio results on a lunch break.",
				ImageURL:        "/images/programs/hiit-express.jpg",
				Duration:        "8 weeks",
				Level:           "Intermediate",
				Category:        "cardio",
				MaxParticipants: 20,
				Price:           3200,
			},
			schedule: []program.Schedule{
				{Day: "Tuesday", StartTime: "12:30", Spots: 20, Kind: "group", Focus: "intervals"},
				{Day: "Friday", StartTime: "12:30", Spots: 20, Kind: "group", Focus: "intervals"},
			},
		},
		{
			program: program.Program{
				Title:           "Mobility & Flow",
				Subtitle:        "Move better, hurt less",
				Description:     "Guided flexibility and mobility sessions for lifters and desk workers alike.",
				ImageURL:        "/images/programs/mobility-flow.jpg",
				Duration:        "6 weeks",
				Level:           "All Levels",
				Category:        "flexibility",
				MaxParticipants: 16,
				Price:           2400,
			},
			schedule: []program.Schedule{
				{Day: "Wednesday", StartTime: "18:00", Spots: 16, Kind: "group", Focus: "hips and spine"},
			},
		},
		{
			program: program.Program{
				Title:           "Personal Coaching Block",
				Subtitle:        "One on one, fully customized",
				Description:     "A private coaching block tailored to your goals, schedule and training history.",
				ImageURL:        "/images/programs/personal-coaching.jpg",
				Duration:        "4 weeks",
				Level:           "Customized",
				Category:        "personal",
				MaxParticipants: 1,
				Price:           9000,
			},
		},
	}

	for _, e := range entries {
		p := e.program
		p.ID = validate.GenerateID()
		p.Active = true
		p.CreatedAt = now
		p.UpdatedAt = now
		p.Version = 1

		if err := program.Create(ctx, tx, p); err != nil {
			return err
		}

		for _, s := range e.schedule {
			s.ProgramID = p.ID
			s.Available = true
			if err := program.CreateSchedule(ctx, tx, s); err != nil {
				return err
			}
		}
	}

	return nil
}
