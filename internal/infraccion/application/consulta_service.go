package application

import (
	"context"
	"time"

	"github.com/seguridadvial/actas/internal/infraccion/domain"
	sharedDomain "github.com/seguridadvial/actas/internal/shared/domain"
	"go.uber.org/zap"
)

// ConsultaService define los casos de uso de lectura sobre infracciones.
type ConsultaService struct {
	repo  domain.InfraccionRepository
	cache domain.InfraccionCache
	log   *zap.Logger
}

// NewConsultaService constructor
func NewConsultaService(repo domain.InfraccionRepository, cache domain.InfraccionCache, log *zap.Logger) *ConsultaService {
	return &ConsultaService{repo: repo, cache: cache, log: log}
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}

		select {
		case <-time.After(delay):
			// espera antes del siguiente intento
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Listar devuelve infracciones según los criterios armados en el borde HTTP.
func (s *ConsultaService) Listar(ctx context.Context, criteria sharedDomain.Criteria, pag sharedDomain.Pagination, sort sharedDomain.Sort) ([]*domain.Infraccion, error) {
	return s.repo.Listar(ctx, criteria, pag, sort)
}

// GetInfraccion obtiene una infracción (primero intenta desde cache).
func (s *ConsultaService) GetInfraccion(ctx context.Context, id int64) (*domain.Infraccion, error) {
	// 1. Intentar cache
	if s.cache != nil {
		var inf domain.Infraccion
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &inf); ok {
			return &inf, nil
		}
	}

	// 2. Ir al repo con reintentos
	var inf *domain.Infraccion
	err := retry(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		inf, err = s.repo.GetByID(ctx, id)
		if err == domain.ErrInfraccionNoEncontrada {
			// no tiene sentido reintentar un 404
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if inf == nil {
		return nil, domain.ErrInfraccionNoEncontrada
	}

	// 3. Actualizar cache en background sin bloquear la respuesta
	if s.cache != nil {
		go func(i *domain.Infraccion) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			if err := s.cache.Set(ctxCache, domain.CacheKeyByID(i.ID), i, 60); err != nil {
				s.log.Warn("no se pudo actualizar el cache", zap.Int64("id", i.ID), zap.Error(err))
			}
		}(inf)
	}

	return inf, nil
}
