package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"nestlink/server/config"
	"nestlink/server/internal/api"
	"nestlink/server/internal/auth"
	"nestlink/server/internal/catalog"
	"nestlink/server/internal/chat"
	"nestlink/server/internal/checkout"
	"nestlink/server/internal/database"
	"nestlink/server/internal/geocoding"
	"nestlink/server/internal/payment"
	"nestlink/server/internal/procurement"
	"nestlink/server/internal/relocation"
	"nestlink/server/internal/scheduler"
)

// app is the dependency graph of a running server
type app struct {
	db        *database.Database
	services  api.Services
	scheduler *scheduler.Scheduler
}

func newApp(cfg *config.Config, logger *logrus.Logger) (*app, error) {
	db, err := database.NewDatabase(database.MemoryDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing store: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate listing store: %w", err)
	}

	geocoder := geocoding.NewGeocoder(logger)

	listings := catalog.NewService(db, catalog.NewGenerator(nil), geocoder, catalog.Options{
		Size:          cfg.Catalog.Size,
		FeaturedCount: cfg.Catalog.FeaturedCount,
		LoadDelay:     cfg.Catalog.LoadDelay,
		SearchDelay:   cfg.Catalog.SearchDelay,
	}, logger)

	cart := procurement.NewStore()
	payments := payment.NewStore(payment.NewSimulatedGateway(cfg.Payment.ProcessingDelay, logger), logger)
	attempt := payment.NewAttempt(payments, cfg.Payment.MobilePrefix)
	booker := relocation.NewBooker(relocation.DefaultFleet(), geocoder, logger)

	return &app{
		db: db,
		services: api.Services{
			Catalog:  listings,
			Cart:     cart,
			Payments: payments,
			Attempt:  attempt,
			Checkout: checkout.NewService(cart, payments, attempt, booker, cfg.Payment.ServiceFeeRate, logger),
			Booker:   booker,
			Chat: chat.NewSession(chat.Options{
				TypingDelay:  cfg.Chat.TypingDelay,
				TypingJitter: cfg.Chat.TypingJitter,
				QueueSize:    cfg.Chat.QueueSize,
			}, logger),
			Auth: auth.NewService(auth.Options{
				Delay: cfg.Auth.Delay,
				JWT: auth.JWTConfig{
					SecretKey:     cfg.Auth.JWTSecret,
					TokenDuration: cfg.Auth.TokenTTL,
					Issuer:        cfg.Auth.Issuer,
				},
			}, logger),
		},
		scheduler: scheduler.NewScheduler(listings, cfg.Catalog.RefreshInterval, logger),
	}, nil
}

func (a *app) Close() error {
	if err := a.services.Chat.Close(); err != nil {
		return err
	}
	return a.db.Close()
}
