package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seguridadvial/actas/internal/infraccion/domain"
	sharedDomain "github.com/seguridadvial/actas/internal/shared/domain"
)

type InfraccionRepoSQLite struct {
	db *sql.DB
}

// Verificación estática
var _ domain.InfraccionRepository = (*InfraccionRepoSQLite)(nil)

func NewInfraccionRepoSQLite(db *sql.DB) *InfraccionRepoSQLite {
	return &InfraccionRepoSQLite{db: db}
}

const columnasInfraccion = `
	i.id, i.serie, i.nro_correlativo, i.fecha_labrado, i.dominio,
	i.lugar, i.arteria, i.velocidad, i.velocidad_maxima, i.foto_file_id,
	i.notificado, i.fecha_notificacion, i.estado,
	t.nombre, t.dni`

const desdeInfracciones = `
	FROM infracciones i
	LEFT JOIN titulares t ON t.dominio = i.dominio`

var camposOrden = map[string]string{
	"serie":           "i.serie",
	"nro_correlativo": "i.nro_correlativo",
	"fecha_labrado":   "i.fecha_labrado",
}

// Traduce criterios neutrales a SQL para SQLite (placeholders ?)
func applyCriteria(criteria sharedDomain.Criteria) (string, []interface{}) {
	conds := criteria.ToConditions()
	var clauses []string
	var args []interface{}
	for _, c := range conds {
		clauses = append(clauses, fmt.Sprintf("%s %s ?", c.Field, c.Op))
		args = append(args, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *InfraccionRepoSQLite) Listar(ctx context.Context, criteria sharedDomain.Criteria, pag sharedDomain.Pagination, sort sharedDomain.Sort) ([]*domain.Infraccion, error) {
	whereSQL, args := applyCriteria(criteria)

	query := "SELECT" + columnasInfraccion + desdeInfracciones
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

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
	query += fmt.Sprintf(" ORDER BY %s LIMIT ? OFFSET ?", orden)
	args = append(args, limit, pag.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return escanearInfracciones(rows)
}

func (r *InfraccionRepoSQLite) GetByID(ctx context.Context, id int64) (*domain.Infraccion, error) {
	query := "SELECT" + columnasInfraccion + desdeInfracciones + " WHERE i.id = ?"

	inf, err := escanearInfraccion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrInfraccionNoEncontrada
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inf, nil
}

func (r *InfraccionRepoSQLite) ListarNoNotificadas(ctx context.Context, sel domain.SeleccionLote) ([]*domain.Infraccion, error) {
	query := "SELECT" + columnasInfraccion + desdeInfracciones + " WHERE i.notificado = FALSE"
	var args []interface{}

	switch s := sel.(type) {
	case domain.PorIDs:
		query += " AND i.id IN (" + placeholders(len(s.IDs)) + ")"
		for _, id := range s.IDs {
			args = append(args, id)
		}
	case domain.PorPeriodo:
		query += " AND i.fecha_labrado >= ? AND i.fecha_labrado <= ?"
		args = append(args, s.Desde, s.Hasta)
	case domain.PorRango:
		query += " AND i.serie = ? AND i.nro_correlativo BETWEEN ? AND ?"
		args = append(args, s.Desde.Serie, s.Desde.Correlativo, s.Hasta.Correlativo)
	default:
		return nil, domain.ErrSinCriterio
	}

	query += " ORDER BY i.serie ASC, i.nro_correlativo ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return escanearInfracciones(rows)
}

func (r *InfraccionRepoSQLite) MarcarNotificadas(ctx context.Context, ids []int64, fecha time.Time) (int64, error) {
	query := `UPDATE infracciones
	    SET notificado = TRUE,
	        fecha_notificacion = ?,
	        estado = '` + domain.EstadoNotificada + `'
	  WHERE id IN (` + placeholders(len(ids)) + `)`

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

func (r *InfraccionRepoSQLite) RegistrarNotificacion(ctx context.Context, n *domain.Notificacion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notificaciones (id, infraccion_id, pdf_path, estado, email, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID.String(), n.InfraccionID, n.PdfPath, n.Estado, n.Email, n.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notificacion: %w", err)
	}
	return nil
}

// ------------------ Helpers ------------------

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
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

// ------------------ Inicialización ------------------

// InitSQLite crea el esquema si no existe. Pensado para despliegues locales;
// en Postgres el esquema se aprovisiona por fuera.
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS infracciones (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		serie TEXT NOT NULL,
		nro_correlativo INTEGER NOT NULL,
		fecha_labrado TIMESTAMP NOT NULL,
		dominio TEXT NOT NULL,
		lugar TEXT NOT NULL DEFAULT '',
		arteria TEXT NOT NULL DEFAULT '',
		velocidad REAL NOT NULL DEFAULT 0,
		velocidad_maxima REAL NOT NULL DEFAULT 0,
		foto_file_id TEXT NOT NULL DEFAULT '',
		notificado BOOLEAN NOT NULL DEFAULT FALSE,
		fecha_notificacion TIMESTAMP,
		estado TEXT NOT NULL DEFAULT 'pendiente',
		UNIQUE (serie, nro_correlativo)
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS titulares (
		dominio TEXT PRIMARY KEY,
		nombre TEXT NOT NULL,
		dni TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS notificaciones (
		id TEXT PRIMARY KEY,
		infraccion_id INTEGER NOT NULL,
		pdf_path TEXT NOT NULL,
		estado TEXT NOT NULL,
		email TEXT NOT NULL,
		sent_at TIMESTAMP NOT NULL
	)`)
	return err
}
