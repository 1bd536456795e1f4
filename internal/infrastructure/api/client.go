// Package api contiene los clientes HTTP del backend REST (auth, empresas, productos,
// inventario, dashboard, chatbot). Cada operación es una llamada HTTP con token Bearer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/inventario-console/pkg/logger"
)

const (
	maxJSONBody   = 4 << 20  // 4 MiB
	maxBinaryBody = 32 << 20 // PDFs
	maxListPages  = 100
)

// Client base compartido por los clientes por recurso.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente base. timeout es solo de transporte; si es 0 se usa 15s.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// BaseURL URL base del backend (sin barra final).
func (c *Client) BaseURL() string { return c.baseURL }

// request describe una llamada. path es relativo a baseURL y termina en "/" como espera el backend.
type request struct {
	method string
	path   string
	token  string
	query  url.Values
	body   any
	accept string
}

// do ejecuta la llamada y decodifica la respuesta JSON en out (si out != nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	raw, err := c.send(ctx, c.url(r.path, r.query), r, maxJSONBody)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return transportError(fmt.Errorf("decodificar respuesta %s %s: %w", r.method, r.path, err))
	}
	return nil
}

// binary ejecuta la llamada y devuelve el cuerpo sin interpretar (export PDF).
func (c *Client) binary(ctx context.Context, r request) ([]byte, error) {
	return c.send(ctx, c.url(r.path, r.query), r, maxBinaryBody)
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) send(ctx context.Context, target string, r request, limit int64) ([]byte, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, transportError(fmt.Errorf("serializar request: %w", err))
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, transportError(fmt.Errorf("crear request: %w", err))
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, transportError(fmt.Errorf("cancelado: %w", ctx.Err()))
		}
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, transportError(fmt.Errorf("leer respuesta: %w", err))
	}
	if int64(len(raw)) > limit {
		return nil, transportError(fmt.Errorf("respuesta supera el límite de %d bytes", limit))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp.StatusCode, raw)
		c.log.Debug().
			Str("method", r.method).
			Str("path", r.path).
			Int("status", resp.StatusCode).
			Str("kind", string(apiErr.Kind)).
			Msg("backend respondió con error")
		return nil, apiErr
	}
	return raw, nil
}

// ── Listados ─────────────────────────────────────────────────────────────────

// page sobre paginado de DRF.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  *[]T    `json:"results"`
}

// decodeList acepta un arreglo desnudo o el sobre {count,next,previous,results}.
// Devuelve la URL de la siguiente página cuando el sobre la trae.
func decodeList[T any](raw []byte) ([]T, string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("listado vacío")
	}
	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	case '{':
		var p page[T]
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, "", err
		}
		if p.Results == nil {
			return nil, "", fmt.Errorf("sobre de listado sin results")
		}
		next := ""
		if p.Next != nil {
			next = *p.Next
		}
		return *p.Results, next, nil
	}
	return nil, "", fmt.Errorf("forma de listado no reconocida")
}

// list descarga la colección completa siguiendo next mientras el backend pagine.
func list[T any](ctx context.Context, c *Client, path, token string) ([]T, error) {
	r := request{method: http.MethodGet, path: path, token: token}
	target := c.url(path, nil)
	var all []T
	for i := 0; i < maxListPages && target != ""; i++ {
		raw, err := c.send(ctx, target, r, maxJSONBody)
		if err != nil {
			return nil, err
		}
		items, next, err := decodeList[T](raw)
		if err != nil {
			return nil, transportError(fmt.Errorf("decodificar listado %s: %w", path, err))
		}
		all = append(all, items...)
		target = next
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

func escape(id string) string { return url.PathEscape(id) }
