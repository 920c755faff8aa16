package model

// DashboardSummary mirrors GET /api/dashboard/resumen
type DashboardSummary struct {
	TotalArticles int `json:"totalArticulos"`
	TotalRequests int `json:"totalSolicitudes"`
	PendingLoans  int `json:"prestamosPendientes"`
	Delivered     int `json:"entregados"`
}

// CategorySummary aggregates articles of one record type
type CategorySummary struct {
	RecordType string `json:"tipoRegistro"`
	Articles   int    `json:"articulos"`
	TotalStock int    `json:"stockTotal"`
	LowStock   int    `json:"stockBajo"`
}
