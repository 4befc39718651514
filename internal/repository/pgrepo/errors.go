package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsdevblog/groph-delivery/internal/domain"
)

const (
	uniqueViolationCode = "23505"
)

func convertErr(err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", fmt.Sprintf(msg, args...), domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		errType := domain.ErrUnknown
		if isUniqueViolationErr(pgErr) {
			errType = domain.ErrDuplicateKey
		}
		return fmt.Errorf("[repository/%s] %w: %s", fmt.Sprintf(msg, args...), errType, pgErr.Message)
	}

	return fmt.Errorf("[repository/%s] %w: %s", fmt.Sprintf(msg, args...), domain.ErrUnknown, err.Error())
}

func isUniqueViolationErr(err *pgconn.PgError) bool {
	return err.Code == uniqueViolationCode
}
