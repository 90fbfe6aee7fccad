package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gestaozabele/presenca/internal/repo"
)

// ImportResult resume uma importação de feriados.
type ImportResult struct {
	Inseridos   int `json:"inseridos"`
	Atualizados int `json:"atualizados"`
}

// ImportFeriados grava os feriados dentro de tx; a data é a chave natural.
func ImportFeriados(ctx context.Context, tx pgx.Tx, feriados []repo.Feriado) (ImportResult, error) {
	const query = `
        INSERT INTO feriados (nome, data, tipo)
        VALUES ($1, $2::date, $3)
        ON CONFLICT (data) DO UPDATE SET nome = EXCLUDED.nome, tipo = EXCLUDED.tipo
        RETURNING (xmax = 0)
    `
	var result ImportResult
	for _, f := range feriados {
		data, err := repo.NormalizeDate(f.Data)
		if err != nil {
			return ImportResult{}, fmt.Errorf("feriado %q: %w", f.Nome, err)
		}
		var inserted bool
		if err := tx.QueryRow(ctx, query, f.Nome, data, f.Tipo).Scan(&inserted); err != nil {
			return ImportResult{}, fmt.Errorf("feriado %s: %w", data, err)
		}
		if inserted {
			result.Inseridos++
		} else {
			result.Atualizados++
		}
	}
	return result, nil
}
