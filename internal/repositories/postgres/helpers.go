package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// SQLSTATE codes the services react to
const (
	pgInsufficientPrivilege = "42501"
	pgUniqueViolation       = "23505"
)

// SharedHelpers holds what every collection repository needs besides the db
type SharedHelpers struct {
	feed   repositories.ChangeFeed
	logger *slog.Logger
}

func NewSharedHelpers(feed repositories.ChangeFeed, logger *slog.Logger) *SharedHelpers {
	return &SharedHelpers{feed: feed, logger: logger}
}

// notify announces a committed write. A failed announcement only delays
// listeners until the next write, so it is logged and not returned.
func (h *SharedHelpers) notify(ctx context.Context, collection string) {
	if h.feed == nil {
		return
	}
	if err := h.feed.Notify(ctx, collection); err != nil {
		h.logger.Warn("Failed to announce change", "collection", collection, "error", err)
	}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInsufficientPrivilege:
			return &repositories.PermissionDeniedError{Operation: pgErr.Message, Err: err}
		case pgUniqueViolation:
			return errors.Join(repositories.ErrDuplicate, err)
		}
	}
	return err
}
