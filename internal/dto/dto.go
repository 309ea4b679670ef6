// dto.go
package dto

// InitOrderRequest initializes a tracking document. Normally arrives via the
// order_placed event; the HTTP route exists for back-office use and tests.
type InitOrderRequest struct {
	OrderID string     `json:"orderId" binding:"required"`
	UserID  string     `json:"userId" binding:"required"`
	Details BottleSpec `json:"details"`
}

// BottleSpec carries the denormalized display fields of a bottle order.
type BottleSpec struct {
	Variant     string `json:"variant"`
	CapColor    string `json:"capColor"`
	Volume      string `json:"volume"`
	Qty         int    `json:"qty"`
	LabelURL    string `json:"labelUrl"`
	CompanyName string `json:"companyName"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

type FranchiseApplyRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required"`
	City       string `json:"city" binding:"required"`
	Investment string `json:"investment"`
	Message    string `json:"message"`
}
