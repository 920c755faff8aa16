package model

// Delivered flag values as stored by the backend
const (
	DeliveredYes = "Si"
	DeliveredNo  = "No"
)

// Loan (Prestamo) is an item lent to a requester
type Loan struct {
	ID         string `json:"_id,omitempty"`
	Code       string `json:"codigoPrestamo"`
	Article    string `json:"articulo"`
	Quantity   int    `json:"cantidad"`
	Requester  string `json:"nombre"`
	LoanDate   string `json:"fechaPrestamo"`
	ReturnDate string `json:"fechaDevolucion"`
	Delivered  string `json:"entregado"`
}

// IsDelivered reports whether the loan has been returned
func (l Loan) IsDelivered() bool {
	return l.Delivered == DeliveredYes
}

// LoanDelivery is the update payload for PUT /api/prestamos/{id}
type LoanDelivery struct {
	Delivered  string `json:"entregado"`
	ReturnDate string `json:"fechaDevolucion"`
}
