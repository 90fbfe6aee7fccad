package calendario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gestaozabele/presenca/internal/remote"
	"github.com/gestaozabele/presenca/internal/repo"
)

// Snapshot é o resultado imutável de uma carga da grade.
type Snapshot struct {
	Anchor time.Time
	Start  time.Time
	End    time.Time

	registros map[string][]repo.RegistroPresenca
	feriados  map[string]repo.Feriado
}

func newSnapshot(anchor, start, end time.Time, registros []repo.RegistroPresenca, feriados []repo.Feriado) *Snapshot {
	s := &Snapshot{
		Anchor:    MonthStart(anchor),
		Start:     start,
		End:       end,
		registros: make(map[string][]repo.RegistroPresenca),
		feriados:  make(map[string]repo.Feriado, len(feriados)),
	}
	for _, r := range registros {
		s.registros[r.Data] = append(s.registros[r.Data], r)
	}
	for _, f := range feriados {
		if _, dup := s.feriados[f.Data]; !dup {
			s.feriados[f.Data] = f
		}
	}
	return s
}

// RecordsOn devolve os registros cujo campo data é o dia de calendário de date.
func (s *Snapshot) RecordsOn(date time.Time) []repo.RegistroPresenca {
	if s == nil {
		return nil
	}
	return s.registros[repo.FormatDate(date)]
}

// HolidayOn devolve o feriado do dia, se houver.
func (s *Snapshot) HolidayOn(date time.Time) *repo.Feriado {
	if s == nil {
		return nil
	}
	f, ok := s.feriados[repo.FormatDate(date)]
	if !ok {
		return nil
	}
	return &f
}

// Contains informa se date está dentro da grade carregada.
func (s *Snapshot) Contains(date time.Time) bool {
	if s == nil {
		return false
	}
	day := repo.FormatDate(date)
	return day >= repo.FormatDate(s.Start) && day <= repo.FormatDate(s.End)
}

// Aggregator busca registros e feriados da grade visível.
// Cargas sobrepostas são ordenadas por sequência: só a mais recente vira estado.
type Aggregator struct {
	tables remote.Tables
	logger zerolog.Logger

	mu      sync.RWMutex
	seq     uint64
	current *Snapshot
	ready   bool
}

// NewAggregator cria o agregador sobre as tabelas informadas.
func NewAggregator(tables remote.Tables) *Aggregator {
	return &Aggregator{
		tables: tables,
		logger: log.With().Str("component", "calendario").Logger(),
	}
}

// LoadRange busca em paralelo registros e feriados da grade do mês de anchor.
// O Snapshot devolvido é sempre o desta chamada, mesmo quando superado por outra.
func (a *Aggregator) LoadRange(ctx context.Context, anchor time.Time) (*Snapshot, error) {
	start, end := Window(anchor)
	from, to := repo.FormatDate(start), repo.FormatDate(end)

	a.mu.Lock()
	a.seq++
	seq := a.seq
	a.ready = false
	a.mu.Unlock()

	var (
		registros []repo.RegistroPresenca
		feriados  []repo.Feriado
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		registros, err = a.tables.ListRegistros(gctx, from, to)
		if err != nil {
			return fmt.Errorf("buscar registros: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		feriados, err = a.tables.ListFeriados(gctx, from, to)
		if err != nil {
			return fmt.Errorf("buscar feriados: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		a.logger.Error().Err(err).Str("de", from).Str("ate", to).Msg("erro ao buscar dados")
		return nil, err
	}

	snapshot := newSnapshot(anchor, start, end, registros, feriados)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.seq {
		a.logger.Debug().Uint64("seq", seq).Msg("carga superada descartada")
		return snapshot, nil
	}
	a.current = snapshot
	a.ready = true
	return snapshot, nil
}

// Ready informa se a carga mais recente terminou.
func (a *Aggregator) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

// Current devolve a última grade aplicada.
func (a *Aggregator) Current() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// RecordsOn consulta a última grade; fora dela o resultado é vazio.
func (a *Aggregator) RecordsOn(date time.Time) []repo.RegistroPresenca {
	return a.Current().RecordsOn(date)
}

// HolidayOn consulta a última grade; fora dela não há feriado.
func (a *Aggregator) HolidayOn(date time.Time) *repo.Feriado {
	return a.Current().HolidayOn(date)
}
