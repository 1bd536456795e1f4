package api

import (
	"context"
	"net/http"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyClient)(nil)

// CompanyClient recurso empresas/, identificado por NIT.
type CompanyClient struct {
	c *Client
}

func NewCompanyClient(c *Client) *CompanyClient { return &CompanyClient{c: c} }

type companyPayload struct {
	NIT       string `json:"nit"`
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
}

func toCompanyPayload(e entity.Company) companyPayload {
	return companyPayload{NIT: e.NIT, Nombre: e.Nombre, Direccion: e.Direccion, Telefono: e.Telefono}
}

func (cc *CompanyClient) List(ctx context.Context, token string) ([]entity.Company, error) {
	return list[entity.Company](ctx, cc.c, "/empresas/", token)
}

func (cc *CompanyClient) Get(ctx context.Context, token, nit string) (*entity.Company, error) {
	var out entity.Company
	if err := cc.c.do(ctx, request{method: http.MethodGet, path: "/empresas/" + escape(nit) + "/", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CompanyClient) Create(ctx context.Context, token string, e entity.Company) (*entity.Company, error) {
	var out entity.Company
	err := cc.c.do(ctx, request{method: http.MethodPost, path: "/empresas/", token: token, body: toCompanyPayload(e)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update PUT empresas/{nit}/ con el registro completo.
func (cc *CompanyClient) Update(ctx context.Context, token, nit string, e entity.Company) (*entity.Company, error) {
	var out entity.Company
	err := cc.c.do(ctx, request{method: http.MethodPut, path: "/empresas/" + escape(nit) + "/", token: token, body: toCompanyPayload(e)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (cc *CompanyClient) Delete(ctx context.Context, token, nit string) error {
	return cc.c.do(ctx, request{method: http.MethodDelete, path: "/empresas/" + escape(nit) + "/", token: token}, nil)
}
