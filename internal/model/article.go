package model

// Record types an article can be registered as
const (
	RecordTypeMaterial    = "Material"
	RecordTypeHerramienta = "Herramienta"
)

// LowStockThreshold is the stock level at or below which an article needs attention
const LowStockThreshold = 5

// Article (Articulo) is a tracked stock item as exchanged with the backend
type Article struct {
	ID          string `json:"_id,omitempty"`
	Code        string `json:"codigoArticulo"`
	Name        string `json:"nombreArticulo"`
	Description string `json:"descripcion"`
	Stock       int    `json:"stock"`
	RecordType  string `json:"tipoRegistro"`
}

// LowStock reports whether the article is at or below LowStockThreshold
func (a Article) LowStock() bool {
	return a.Stock <= LowStockThreshold
}

// RecordTypes lists the record types in display order
func RecordTypes() []string {
	return []string{RecordTypeMaterial, RecordTypeHerramienta}
}
