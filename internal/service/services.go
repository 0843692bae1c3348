package service

import (
	postgres "github.com/kirinyoku/tour-go/internal/repository/postgres"
	"github.com/kirinyoku/tour-go/internal/service/accounts"
	"github.com/kirinyoku/tour-go/internal/service/admin"
	"github.com/kirinyoku/tour-go/internal/service/bookings"
	"github.com/kirinyoku/tour-go/internal/service/checkout"
	"github.com/kirinyoku/tour-go/internal/service/ratelimit"
	"github.com/kirinyoku/tour-go/internal/service/reviews"
	"github.com/kirinyoku/tour-go/internal/service/tours"
	"github.com/kirinyoku/tour-go/internal/service/wishlist"
	"github.com/kirinyoku/tour-go/internal/uow"
)

type Services struct {
	Accounts *accounts.Service
	Tours    *tours.Service
	Bookings *bookings.Service
	Reviews  *reviews.Service
	Wishlist *wishlist.Service
	Checkout *checkout.Service
	Admin    *admin.Service
}

type Config struct {
	Bookings bookings.Config
}

// Deps are the collaborators shared by the services. Optional ones are
// nil interfaces when the backing infrastructure is not configured.
type Deps struct {
	Store       *postgres.Store
	UoW         uow.Runner
	TourCache   tours.Cache
	Limiter     ratelimit.Limiter
	Idempotency checkout.IdempotencyStore
	Notifier    bookings.Notifier
	Hasher      accounts.PasswordHasher
	Issuer      accounts.TokenIssuer
	Payments    checkout.Processor
}

func NewServices(d Deps, cfg Config) *Services {
	store := d.Store

	tourSvc := tours.New(store.Tours(), store.Bookings(), d.TourCache)
	bookingSvc := bookings.New(
		store.Bookings(),
		store.Tours(),
		store.Users(),
		d.Notifier,
		d.Limiter,
		d.UoW,
		cfg.Bookings,
	)

	return &Services{
		Accounts: accounts.New(store.Users(), d.Hasher, d.Issuer, d.Limiter),
		Tours:    tourSvc,
		Bookings: bookingSvc,
		Reviews:  reviews.New(store.Reviews(), store.Tours(), store.Bookings(), store.Users(), tourSvc, d.UoW),
		Wishlist: wishlist.New(store.Wishlist(), store.Tours()),
		Checkout: checkout.New(d.Payments, store.Tours(), store.Users(), bookingSvc, d.Idempotency, d.Limiter),
		Admin:    admin.New(store.Stats(), store.Bookings()),
	}
}
