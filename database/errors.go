package database

import (
	"database/sql"

	"github.com/lib/pq"
	"golang.org/x/xerrors"
)

// UniqueConstraint names a unique index on provider_configs.
type UniqueConstraint string

const (
	UniqueProviderConfigsPkey      UniqueConstraint = "provider_configs_pkey"
	UniqueProviderConfigsLowerName UniqueConstraint = "provider_configs_lower_name_idx"
)

// IsUniqueViolation checks if the error is due to a unique violation.
// If one or more specific unique constraints are given as arguments,
// the error must be caused by one of them. If no constraints are given,
// this function returns true for any unique violation.
func IsUniqueViolation(err error, uniqueConstraints ...UniqueConstraint) bool {
	var pqErr *pq.Error
	if xerrors.As(err, &pqErr) {
		if pqErr.Code.Name() == "unique_violation" {
			if len(uniqueConstraints) == 0 {
				return true
			}
			for _, uc := range uniqueConstraints {
				if pqErr.Constraint == string(uc) {
					return true
				}
			}
		}
	}

	return false
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return xerrors.Is(err, sql.ErrNoRows)
}
