package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryClient)(nil)

// InventoryClient recurso inventario/ (id numérico) más export_pdf y send_email.
type InventoryClient struct {
	c *Client
}

func NewInventoryClient(c *Client) *InventoryClient { return &InventoryClient{c: c} }

type inventoryPayload struct {
	Empresa  string `json:"empresa"`
	Producto string `json:"producto"`
	Cantidad int    `json:"cantidad"`
}

func recordPath(id int64) string { return "/inventario/" + strconv.FormatInt(id, 10) + "/" }

func (ic *InventoryClient) List(ctx context.Context, token string) ([]entity.InventoryRecord, error) {
	return list[entity.InventoryRecord](ctx, ic.c, "/inventario/", token)
}

func (ic *InventoryClient) Get(ctx context.Context, token string, id int64) (*entity.InventoryRecord, error) {
	var out entity.InventoryRecord
	if err := ic.c.do(ctx, request{method: http.MethodGet, path: recordPath(id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (ic *InventoryClient) Create(ctx context.Context, token string, r entity.InventoryRecord) (*entity.InventoryRecord, error) {
	var out entity.InventoryRecord
	body := inventoryPayload{Empresa: r.Empresa, Producto: r.Producto, Cantidad: r.Cantidad}
	if err := ic.c.do(ctx, request{method: http.MethodPost, path: "/inventario/", token: token, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (ic *InventoryClient) Update(ctx context.Context, token string, id int64, r entity.InventoryRecord) (*entity.InventoryRecord, error) {
	var out entity.InventoryRecord
	body := inventoryPayload{Empresa: r.Empresa, Producto: r.Producto, Cantidad: r.Cantidad}
	if err := ic.c.do(ctx, request{method: http.MethodPut, path: recordPath(id), token: token, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (ic *InventoryClient) Delete(ctx context.Context, token string, id int64) error {
	return ic.c.do(ctx, request{method: http.MethodDelete, path: recordPath(id), token: token}, nil)
}

// ExportPDF GET inventario/export_pdf/[?empresa=NIT].
func (ic *InventoryClient) ExportPDF(ctx context.Context, token, empresaNIT string) ([]byte, error) {
	var q url.Values
	if empresaNIT != "" {
		q = url.Values{"empresa": {empresaNIT}}
	}
	return ic.c.binary(ctx, request{
		method: http.MethodGet,
		path:   "/inventario/export_pdf/",
		token:  token,
		query:  q,
		accept: "application/pdf",
	})
}

// SendEmail POST inventario/send_email/ y devuelve el mensaje de confirmación del backend.
func (ic *InventoryClient) SendEmail(ctx context.Context, token, email, empresaNIT string) (string, error) {
	body := map[string]string{"email": email}
	if empresaNIT != "" {
		body["empresa"] = empresaNIT
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := ic.c.do(ctx, request{method: http.MethodPost, path: "/inventario/send_email/", token: token, body: body}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
