package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		code string
		kind apperror.Kind
	}{
		{pgerrcode.SerializationFailure, apperror.KindConflict},
		{pgerrcode.DeadlockDetected, apperror.KindConflict},
		{pgerrcode.LockNotAvailable, apperror.KindConflict},
		{pgerrcode.CheckViolation, apperror.KindValidation},
		{pgerrcode.UniqueViolation, apperror.KindValidation},
		{pgerrcode.ForeignKeyViolation, apperror.KindValidation},
		{pgerrcode.UndefinedTable, apperror.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: tt.code, ConstraintName: "c"})
			assert.Equal(t, tt.kind, apperror.KindOf(mapPgError(err, "resource")))
		})
	}
}

func TestMapPgError_KeepsChain(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}

	mapped := mapPgError(pgErr, "resource")

	var target *pgconn.PgError
	assert.True(t, errors.As(mapped, &target))
}

func TestMapPgError_PassThrough(t *testing.T) {
	err := errors.New("connection refused")
	assert.Same(t, err, mapPgError(err, "resource"))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "", containsPattern("  "))
	assert.Equal(t, "%man%", containsPattern(" man "))
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}
