package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation indica si err es una violación de constraint único (23505) y cuál.
func uniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// validUUID evita enviar a Postgres ids que la columna UUID rechazaría con error de sintaxis.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
