package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/seguridadvial/actas/internal/infraccion/domain"
	sharedDomain "github.com/seguridadvial/actas/internal/shared/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type InfraccionRepoPostgres struct {
	db *sql.DB
}

// Verificación estática
var _ domain.InfraccionRepository = (*InfraccionRepoPostgres)(nil)

func NewInfraccionRepoPostgres(db *sql.DB) *InfraccionRepoPostgres {
	return &InfraccionRepoPostgres{db: db}
}

// Columnas del SELECT enriquecido (infracciones + titular por dominio).
const columnasInfraccion = `
	i.id, i.serie, i.nro_correlativo, i.fecha_labrado, i.dominio,
	i.lugar, i.arteria, i.velocidad, i.velocidad_maxima, i.foto_file_id,
	i.notificado, i.fecha_notificacion, i.estado,
	t.nombre, t.dni`

const desdeInfracciones = `
	FROM infracciones i
	LEFT JOIN titulares t ON t.dominio = i.dominio`

// Campos admitidos para ordenar, para no interpolar entrada arbitraria.
var camposOrden = map[string]string{
	"serie":           "i.serie",
	"nro_correlativo": "i.nro_correlativo",
	"fecha_labrado":   "i.fecha_labrado",
}

// Traduce criterios neutrales a SQL para Postgres ($1, $2...)
func applyCriteria(criteria sharedDomain.Criteria) (string, []interface{}) {
	conds := criteria.ToConditions()
	var clauses []string
	var args []interface{}
	for i, c := range conds {
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", c.Field, c.Op, i+1))
		args = append(args, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *InfraccionRepoPostgres) Listar(ctx context.Context, criteria sharedDomain.Criteria, pag sharedDomain.Pagination, sort sharedDomain.Sort) ([]*domain.Infraccion, error) {
	whereSQL, args := applyCriteria(criteria)

	query := "SELECT" + columnasInfraccion + desdeInfracciones
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	// Listado: lo más nuevo primero dentro de cada serie, salvo que el
	// caller pida otro campo conocido.
	orden := "i.serie ASC, i.nro_correlativo DESC"
	if col, ok := camposOrden[sort.Field]; ok {
		dir := "ASC"
		if sort.Desc {
			dir = "DESC"
		}
		orden = fmt.Sprintf("%s %s", col, dir)
	}

	limit := pag.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, pag.Offset)
	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orden, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return escanearInfracciones(rows)
}

func (r *InfraccionRepoPostgres) GetByID(ctx context.Context, id int64) (*domain.Infraccion, error) {
	query := "SELECT" + columnasInfraccion + desdeInfracciones + " WHERE i.id = $1"

	inf, err := escanearInfraccion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrInfraccionNoEncontrada
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inf, nil
}

func (r *InfraccionRepoPostgres) ListarNoNotificadas(ctx context.Context, sel domain.SeleccionLote) ([]*domain.Infraccion, error) {
	query := "SELECT" + columnasInfraccion + desdeInfracciones + " WHERE i.notificado = FALSE"
	var args []interface{}

	switch s := sel.(type) {
	case domain.PorIDs:
		query += " AND i.id IN (" + placeholders(1, len(s.IDs)) + ")"
		for _, id := range s.IDs {
			args = append(args, id)
		}
	case domain.PorPeriodo:
		query += " AND i.fecha_labrado >= $1 AND i.fecha_labrado <= $2"
		args = append(args, s.Desde, s.Hasta)
	case domain.PorRango:
		query += " AND i.serie = $1 AND i.nro_correlativo BETWEEN $2 AND $3"
		args = append(args, s.Desde.Serie, s.Desde.Correlativo, s.Hasta.Correlativo)
	default:
		return nil, domain.ErrSinCriterio
	}

	// Orden de lote: cronológico por serie y correlativo
	query += " ORDER BY i.serie ASC, i.nro_correlativo ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return escanearInfracciones(rows)
}

func (r *InfraccionRepoPostgres) MarcarNotificadas(ctx context.Context, ids []int64, fecha time.Time) (int64, error) {
	query := `UPDATE infracciones
	    SET notificado = TRUE,
	        fecha_notificacion = $1,
	        estado = '` + domain.EstadoNotificada + `'
	  WHERE id IN (` + placeholders(2, len(ids)) + `)`

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, fecha)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *InfraccionRepoPostgres) RegistrarNotificacion(ctx context.Context, n *domain.Notificacion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notificaciones (id, infraccion_id, pdf_path, estado, email, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.InfraccionID, n.PdfPath, n.Estado, n.Email, n.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notificacion: %w", err)
	}
	return nil
}

// ------------------ Helpers ------------------

// placeholders arma "$start,$start+1,..." para listas IN.
func placeholders(start, n int) string {
	ps := make([]string, n)
	for i := 0; i < n; i++ {
		ps[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ps, ",")
}

type escaneable interface {
	Scan(dest ...interface{}) error
}

func escanearInfraccion(row escaneable) (*domain.Infraccion, error) {
	var inf domain.Infraccion
	var fechaNotif sql.NullTime
	var titular, dni sql.NullString

	if err := row.Scan(
		&inf.ID, &inf.Serie, &inf.NroCorrelativo, &inf.FechaLabrado, &inf.Dominio,
		&inf.Lugar, &inf.Arteria, &inf.Velocidad, &inf.VelocidadMax, &inf.FotoFileID,
		&inf.Notificado, &fechaNotif, &inf.Estado,
		&titular, &dni,
	); err != nil {
		return nil, err
	}

	if fechaNotif.Valid {
		inf.FechaNotificacion = &fechaNotif.Time
	}
	if titular.Valid {
		inf.TitularNombre = &titular.String
	}
	if dni.Valid {
		inf.TitularDNI = &dni.String
	}
	return &inf, nil
}

func escanearInfracciones(rows *sql.Rows) ([]*domain.Infraccion, error) {
	var res []*domain.Infraccion
	for rows.Next() {
		inf, err := escanearInfraccion(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, inf)
	}
	return res, rows.Err()
}
