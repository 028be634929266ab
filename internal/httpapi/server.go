// Package httpapi exposes the bookkeeping service over HTTP. Handlers decode
// and validate transport concerns, delegate to the services, and render the
// shared response envelope.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/bebsa/ledger/internal/config"
	"github.com/bebsa/ledger/internal/service/account"
	"github.com/bebsa/ledger/internal/service/due"
	"github.com/bebsa/ledger/internal/service/entry"
	"github.com/bebsa/ledger/internal/service/user"
)

// ReadyChecker reports storage health for the readiness probe.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// Server bundles the services behind the router.
type Server struct {
	log      *slog.Logger
	cfg      *config.Config
	entries  *entry.Service
	accounts *account.Service
	due      *due.Service
	users    *user.Service
	ready    ReadyChecker
}

// New wires a Server.
func New(log *slog.Logger, cfg *config.Config, entries *entry.Service, accounts *account.Service, dueSvc *due.Service, users *user.Service, ready ReadyChecker) *Server {
	return &Server{
		log:      log,
		cfg:      cfg,
		entries:  entries,
		accounts: accounts,
		due:      dueSvc,
		users:    users,
		ready:    ready,
	}
}
