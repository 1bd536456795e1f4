package entity

import "github.com/shopspring/decimal"

// DashboardStats respuesta de auth/dashboard/stats.
type DashboardStats struct {
	Resumen              StatsSummary      `json:"resumen"`
	EmpresasRecientes    []RecentCompany   `json:"empresas_recientes"`
	ProductosTop         []TopProduct      `json:"productos_top"`
	InventarioPorEmpresa []CompanyStock    `json:"inventario_por_empresa"`
	ProductosPorEmpresa  []CompanyProducts `json:"productos_por_empresa"`
	Usuario              StatsUser         `json:"usuario"`
	ActividadReciente    []Activity        `json:"actividad_reciente"`
}

// StatsSummary totales globales.
type StatsSummary struct {
	TotalEmpresas   int             `json:"total_empresas"`
	TotalProductos  int             `json:"total_productos"`
	TotalInventario int64           `json:"total_inventario"`
	ValorTotalCOP   decimal.Decimal `json:"valor_total_cop"`
}

type RecentCompany struct {
	NIT       string    `json:"nit"`
	Nombre    string    `json:"nombre"`
	Telefono  string    `json:"telefono"`
	CreatedAt Timestamp `json:"created_at"`
}

type TopProduct struct {
	Codigo        string `json:"producto__codigo"`
	Nombre        string `json:"producto__nombre"`
	EmpresaNombre string `json:"producto__empresa__nombre"`
	TotalCantidad int64  `json:"total_cantidad"`
}

type CompanyStock struct {
	NIT            string `json:"empresa__nit"`
	Nombre         string `json:"empresa__nombre"`
	TotalProductos int    `json:"total_productos"`
	TotalCantidad  int64  `json:"total_cantidad"`
}

type CompanyProducts struct {
	Nombre string `json:"empresa__nombre"`
	Total  int    `json:"total"`
}

type StatsUser struct {
	Nombre  string `json:"nombre"`
	Email   string `json:"email"`
	Rol     string `json:"rol"`
	EsAdmin bool   `json:"es_admin"`
}

// Activity evento reciente (tipo: empresa | producto).
type Activity struct {
	Tipo        string    `json:"tipo"`
	Descripcion string    `json:"descripcion"`
	Fecha       Timestamp `json:"fecha"`
}
