// Package supabase fala com o backend hospedado: GoTrue para autenticação
// e PostgREST para as tabelas.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gestaozabele/presenca/internal/auth"
	"github.com/gestaozabele/presenca/internal/util"
)

const defaultTimeout = 15 * time.Second

// Config descreve o projeto hospedado.
type Config struct {
	URL       string
	AnonKey   string
	JWTSecret string
	Timeout   time.Duration
}

// Client encapsula as chamadas HTTP ao projeto.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	jwt        *auth.JWTManager
	now        func() time.Time
}

// New cria o cliente; JWTSecret é opcional e habilita a verificação dos tokens.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase: url obrigatória")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, errors.New("supabase: anon key obrigatória")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		anonKey:    cfg.AnonKey,
		now:        util.Now,
	}
	if cfg.JWTSecret != "" {
		c.jwt = auth.NewJWTManager(cfg.JWTSecret, 0)
	}
	return c, nil
}

// APIError é a resposta de erro do GoTrue ou do PostgREST.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "erro desconhecido"
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase: status %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, msg)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Code             any    `json:"code"`
		ErrorCode        string `json:"error_code"`
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(raw, &payload)

	apiErr := &APIError{Status: resp.StatusCode}
	switch code := payload.Code.(type) {
	case string:
		apiErr.Code = code
	}
	if payload.ErrorCode != "" {
		apiErr.Code = payload.ErrorCode
	}
	if apiErr.Code == "" {
		apiErr.Code = payload.Error
	}
	for _, msg := range []string{payload.Message, payload.Msg, payload.ErrorDescription, payload.Error} {
		if strings.TrimSpace(msg) != "" {
			apiErr.Message = msg
			break
		}
	}
	return apiErr
}
