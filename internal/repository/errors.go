package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
)

// mapPgError переводит ошибки Postgres, значимые для клиента, в ошибки ядра.
// Остальные ошибки возвращаются как есть.
func mapPgError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return apperror.Conflict("concurrent update of "+entity+", retry the request", err)
	case pgerrcode.CheckViolation:
		return apperror.Validation("%s violates constraint %s", entity, pgErr.ConstraintName)
	case pgerrcode.UniqueViolation:
		return apperror.Validation("%s already exists", entity)
	case pgerrcode.ForeignKeyViolation:
		return apperror.Validation("%s references a missing record", entity)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern экранирует ввод для поиска подстроки через ILIKE
func containsPattern(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(s) + "%"
}

// displayNameSQL выражение отображаемого имени пользователя для таблицы с псевдонимом alias
func displayNameSQL(alias string) string {
	return "COALESCE(NULLIF(TRIM(" + alias + ".first_name || ' ' || " + alias + ".last_name), ''), " + alias + ".username, '')"
}
