package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"copilot-context/internal/domain"
)

// SubjectType indica a quién pertenece un atributo.
type SubjectType string

const (
	SubjectUser         SubjectType = "user"
	SubjectOrganization SubjectType = "organization"
)

// AttributeRepository es la fuente de atributos que consulta el resolver.
type AttributeRepository interface {
	ListBySubject(ctx context.Context, subject SubjectType, key string) ([]domain.Attribute, error)
}

// PgAttributeRepository lee la tabla context_attributes. Solo lectura.
type PgAttributeRepository struct {
	pool *pgxpool.Pool
}

func NewPgAttributeRepository(pool *pgxpool.Pool) *PgAttributeRepository {
	return &PgAttributeRepository{pool: pool}
}

func (r *PgAttributeRepository) ListBySubject(ctx context.Context, subject SubjectType, key string) ([]domain.Attribute, error) {
	const query = `
		SELECT label, value, description, use_when
		FROM context_attributes
		WHERE subject_type = $1 AND subject_key = $2
		ORDER BY position ASC, label ASC
	`

	rows, err := r.pool.Query(ctx, query, string(subject), key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := make([]domain.Attribute, 0)
	for rows.Next() {
		var attr domain.Attribute
		if err := rows.Scan(&attr.Label, &attr.Value, &attr.Description, &attr.UseWhen); err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, rows.Err()
}
