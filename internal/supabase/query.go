package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gestaozabele/presenca/internal/repo"
)

// ErrMultiplasLinhas indica mais de uma linha onde no máximo uma era esperada.
var ErrMultiplasLinhas = errors.New("supabase: mais de uma linha retornada")

const (
	acceptObject         = "application/vnd.pgrst.object+json"
	preferRepresentation = "return=representation"
	codeNoRows           = "PGRST116"
)

// Query monta uma chamada PostgREST no estilo from(tabela).select().eq().
type Query struct {
	client *Client
	token  string
	table  string
	method string
	params url.Values
	body   any
	prefer string
}

// From inicia uma consulta na tabela autenticada com token.
func (c *Client) From(table, token string) *Query {
	return &Query{
		client: c,
		token:  token,
		table:  table,
		method: http.MethodGet,
		params: url.Values{},
	}
}

func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

func (q *Query) Eq(column, value string) *Query {
	q.params.Add(column, "eq."+value)
	return q
}

func (q *Query) Gte(column, value string) *Query {
	q.params.Add(column, "gte."+value)
	return q
}

func (q *Query) Lte(column, value string) *Query {
	q.params.Add(column, "lte."+value)
	return q
}

func (q *Query) Order(column string) *Query {
	q.params.Set("order", column)
	return q
}

// Insert envia rows e pede a representação das linhas criadas.
func (q *Query) Insert(rows any) *Query {
	q.method = http.MethodPost
	q.body = rows
	q.prefer = preferRepresentation
	return q
}

// Update aplica values às linhas filtradas e devolve as linhas alteradas.
func (q *Query) Update(values any) *Query {
	q.method = http.MethodPatch
	q.body = values
	q.prefer = preferRepresentation
	return q
}

// Execute decodifica a resposta (lista) em v.
func (q *Query) Execute(ctx context.Context, v any) error {
	req, err := q.request(ctx)
	if err != nil {
		return err
	}
	return q.client.do(req, v)
}

// Single exige exatamente uma linha; nenhuma vira repo.ErrNotFound.
func (q *Query) Single(ctx context.Context, v any) error {
	req, err := q.request(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", acceptObject)

	err = q.client.do(req, v)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == codeNoRows {
		return repo.ErrNotFound
	}
	return err
}

// MaybeSingle aceita zero ou uma linha; found indica se houve linha.
func (q *Query) MaybeSingle(ctx context.Context, v any) (bool, error) {
	var rows []json.RawMessage
	if err := q.Execute(ctx, &rows); err != nil {
		return false, err
	}
	switch len(rows) {
	case 0:
		return false, nil
	case 1:
		return true, json.Unmarshal(rows[0], v)
	default:
		return false, ErrMultiplasLinhas
	}
}

func (q *Query) request(ctx context.Context) (*http.Request, error) {
	endpoint := "/rest/v1/" + q.table
	if encoded := q.params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := q.client.newRequest(ctx, q.method, endpoint, q.token, q.body)
	if err != nil {
		return nil, err
	}
	if q.prefer != "" {
		req.Header.Set("Prefer", q.prefer)
	}
	return req, nil
}
