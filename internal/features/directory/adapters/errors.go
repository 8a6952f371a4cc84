package adapters

import (
	"parcel-ledger/internal/core/apperr"
	"parcel-ledger/internal/core/database"
	"parcel-ledger/internal/features/directory/domain"
)

// errDuplicate covers unique violations whose constraint is not recognised.
var errDuplicate = apperr.New(apperr.KindConflict, "duplicate", "record already exists")

// uniqueErrors maps unique index names from the schema to domain conflicts.
var uniqueErrors = map[string]*apperr.Error{
	"uq_users_email":       domain.ErrEmailTaken,
	"uq_users_username":    domain.ErrUsernameTaken,
	"uq_employees_code":    domain.ErrEmployeeCodeTaken,
	"uq_companies_bulstat": domain.ErrBulstatTaken,
	"uq_offices_code":      domain.ErrOfficeCodeTaken,
}

// translate turns store constraint violations into domain errors. fkErr is used for
// foreign key violations, which mean a referenced row is missing or a RESTRICT rule fired.
func translate(err error, fkErr *apperr.Error) error {
	if name, ok := database.IsUniqueViolation(err); ok {
		if mapped, found := uniqueErrors[name]; found {
			return mapped
		}
		return errDuplicate.Wrap(err)
	}
	if _, ok := database.IsForeignKeyViolation(err); ok && fkErr != nil {
		return fkErr
	}
	return err
}
