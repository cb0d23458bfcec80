package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"ignitegigs/internal/config"
	"ignitegigs/internal/database"
	"ignitegigs/internal/domain"
	"ignitegigs/internal/logging"
	"ignitegigs/internal/repository"
)

// seed creates development accounts. All passwords are "password123".
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	if cfg.IsProdLike() {
		logging.Fatal().Msg("refusing to seed a production database")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.Component("seed")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	log.Info().Msg("cleaning old data")
	for _, table := range []string{"notifications", "messages", "disputes", "bookings", "performer_profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatal().Err(err).Str("table", table).Msg("clean")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	accounts := []domain.User{
		{Email: "admin@ignitegigs.com", FullName: "Platform Admin", Role: domain.RoleAdmin},
		{Email: "sophie@example.com", FullName: "Sophie Turner", Role: domain.RoleClient, Phone: "+44 7700 900123"},
		{Email: "marcus@example.com", FullName: "Marcus Reid", Role: domain.RoleClient},
	}
	for i := range accounts {
		u := &accounts[i]
		u.ID = uuid.NewString()
		u.PasswordHash = string(hash)
		u.EmailVerified = true
		if err := users.Create(ctx, u); err != nil {
			log.Fatal().Err(err).Str("email", u.Email).Msg("create user")
		}
		log.Info().Str("email", u.Email).Str("role", string(u.Role)).Msg("user created")
	}

	performers := []struct {
		user    domain.User
		profile domain.PerformerProfile
	}{
		{
			user: domain.User{Email: "blaze@example.com", FullName: "Jamie Cole", Role: domain.RolePerformer},
			profile: domain.PerformerProfile{
				StageName: "Blaze", LocationName: "Brighton",
				HourlyRate: pence(15000), EventRate: pence(45000), MinRate: pence(30000),
				StripeAccountID: "acct_seed_blaze", StripeOnboardingComplete: true,
			},
		},
		{
			user: domain.User{Email: "luna@example.com", FullName: "Ria Patel", Role: domain.RolePerformer},
			profile: domain.PerformerProfile{
				StageName: "Luna LED", LocationName: "Manchester",
				EventRate: pence(60000),
			},
		},
	}
	for i := range performers {
		p := &performers[i]
		p.user.ID = uuid.NewString()
		p.user.PasswordHash = string(hash)
		p.user.EmailVerified = true
		p.profile.ID = uuid.NewString()
		p.profile.IsActive = true
		if err := users.CreateWithProfile(ctx, &p.user, &p.profile); err != nil {
			log.Fatal().Err(err).Str("email", p.user.Email).Msg("create performer")
		}
		log.Info().
			Str("email", p.user.Email).
			Str("performer_id", p.profile.ID).
			Bool("payout_ready", p.profile.PayoutReady()).
			Msg("performer created")
	}

	log.Info().Msg("seed completed")
}

func pence(v int64) *int64 { return &v }
