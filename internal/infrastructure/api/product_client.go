package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductClient)(nil)

// ProductClient recurso productos/, identificado por código.
type ProductClient struct {
	c *Client
}

func NewProductClient(c *Client) *ProductClient { return &ProductClient{c: c} }

type pricePayload struct {
	Moneda string      `json:"moneda"`
	Precio json.Number `json:"precio"`
}

type productPayload struct {
	Codigo          string         `json:"codigo"`
	Nombre          string         `json:"nombre"`
	Caracteristicas string         `json:"caracteristicas"`
	Empresa         string         `json:"empresa,omitempty"`
	Precios         []pricePayload `json:"precios"`
}

// toProductPayload envía los precios como número JSON, que es lo que espera el backend.
func toProductPayload(p entity.Product) productPayload {
	out := productPayload{
		Codigo:          p.Codigo,
		Nombre:          p.Nombre,
		Caracteristicas: p.Caracteristicas,
		Empresa:         p.Empresa,
		Precios:         make([]pricePayload, 0, len(p.Precios)),
	}
	for _, pr := range p.Precios {
		out.Precios = append(out.Precios, pricePayload{Moneda: pr.Moneda, Precio: json.Number(pr.Precio.String())})
	}
	return out
}

func (pc *ProductClient) List(ctx context.Context, token string) ([]entity.Product, error) {
	return list[entity.Product](ctx, pc.c, "/productos/", token)
}

func (pc *ProductClient) Get(ctx context.Context, token, codigo string) (*entity.Product, error) {
	var out entity.Product
	if err := pc.c.do(ctx, request{method: http.MethodGet, path: "/productos/" + escape(codigo) + "/", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (pc *ProductClient) Create(ctx context.Context, token string, p entity.Product) (*entity.Product, error) {
	var out entity.Product
	err := pc.c.do(ctx, request{method: http.MethodPost, path: "/productos/", token: token, body: toProductPayload(p)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (pc *ProductClient) Update(ctx context.Context, token, codigo string, p entity.Product) (*entity.Product, error) {
	var out entity.Product
	err := pc.c.do(ctx, request{method: http.MethodPut, path: "/productos/" + escape(codigo) + "/", token: token, body: toProductPayload(p)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (pc *ProductClient) Delete(ctx context.Context, token, codigo string) error {
	return pc.c.do(ctx, request{method: http.MethodDelete, path: "/productos/" + escape(codigo) + "/", token: token}, nil)
}
