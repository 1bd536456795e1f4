package entity

// InventoryRecord (inventario) cantidad de un producto en una empresa.
// Empresa y Producto son inmutables; la edición solo cambia Cantidad.
// EmpresaNombre, ProductoNombre y ProductoCodigo los desnormaliza el backend para la tabla.
type InventoryRecord struct {
	ID             int64     `json:"id"`
	Empresa        string    `json:"empresa"`  // NIT
	Producto       string    `json:"producto"` // código
	EmpresaNombre  string    `json:"empresa_nombre,omitempty"`
	ProductoNombre string    `json:"producto_nombre,omitempty"`
	ProductoCodigo string    `json:"producto_codigo,omitempty"`
	Cantidad       int       `json:"cantidad"`
	FechaRegistro  Timestamp `json:"fecha_registro"`
	UpdatedAt      Timestamp `json:"updated_at"`
}

// InventoryKey clave del registro en colecciones locales.
func InventoryKey(r InventoryRecord) int64 { return r.ID }

// StockLevel estado visual de una cantidad.
type StockLevel string

const (
	StockDepleted StockLevel = "agotado" // cantidad == 0
	StockLow      StockLevel = "bajo"    // 0 < cantidad < 10
	StockNormal   StockLevel = "normal"  // cantidad >= 10
)

// LowStockThreshold a partir de esta cantidad el stock se considera normal.
const LowStockThreshold = 10

// StockLevelOf clasifica una cantidad.
func StockLevelOf(cantidad int) StockLevel {
	switch {
	case cantidad <= 0:
		return StockDepleted
	case cantidad < LowStockThreshold:
		return StockLow
	default:
		return StockNormal
	}
}

// Level estado visual del registro.
func (r InventoryRecord) Level() StockLevel { return StockLevelOf(r.Cantidad) }
