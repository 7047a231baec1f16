package account

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// GetRoleByName retrieves a role by its unique name.
func (r *repository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	query, args, err := r.psql.Select("id", "name", "created_at").
		From("roles").
		Where(squirrel.Eq{"name": name}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var role Role
	if err := pgxscan.Get(ctx, r.db, &role, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &role, nil
}

// GetPermissionsForRole returns the explicit permission rows joined to the
// role through the role_permissions bridge table. An empty result is a valid
// permission set, not an error.
func (r *repository) GetPermissionsForRole(ctx context.Context, roleID string) ([]Permission, error) {
	query, args, err := r.psql.Select("p.id", "p.key", "p.description").
		From("permissions p").
		Join("role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.key").
		ToSql()
	if err != nil {
		return nil, err
	}

	var perms []Permission
	if err := pgxscan.Select(ctx, r.db, &perms, query, args...); err != nil {
		return nil, err
	}
	return perms, nil
}
