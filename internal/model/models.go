// models.go
package model

import "time"

// Order is the tracking document for one bottle-labeling order. Status is the
// authoritative current lifecycle state; History is the append-only record of
// every transition observed.
type Order struct {
	OrderID       string         `bson:"order_id" json:"orderId"`
	UserID        string         `bson:"user_id" json:"userId"`
	Status        string         `bson:"status" json:"status"`
	PaymentStatus string         `bson:"payment_status" json:"paymentStatus"`
	DeclineReason string         `bson:"decline_reason,omitempty" json:"declineReason,omitempty"`
	History       []StatusRecord `bson:"history" json:"history"`

	// Denormalized display fields, immutable after creation.
	Variant     string `bson:"variant,omitempty" json:"variant,omitempty"`
	CapColor    string `bson:"cap_color,omitempty" json:"capColor,omitempty"`
	Volume      string `bson:"volume,omitempty" json:"volume,omitempty"`
	Qty         int    `bson:"qty,omitempty" json:"qty,omitempty"`
	LabelURL    string `bson:"label_url,omitempty" json:"labelUrl,omitempty"`
	CompanyName string `bson:"company_name,omitempty" json:"companyName,omitempty"`

	CreatedAt        time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updatedAt"`
	ExpectedDelivery *time.Time `bson:"expected_delivery,omitempty" json:"expectedDelivery,omitempty"`
}

// StatusRecord is one status-change event in an order's history.
type StatusRecord struct {
	Status    string    `bson:"status" json:"status"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	ChangedBy string    `bson:"changed_by,omitempty" json:"changedBy,omitempty"`
	ChangedAt time.Time `bson:"changed_at" json:"changedAt"`
}

// Payment proof moves through its own machine, independent of the order
// lifecycle: pending -> uploaded -> verified | rejected.
const (
	PaymentPending  = "payment_pending"
	PaymentUploaded = "payment_uploaded"
	PaymentVerified = "payment_verified"
	PaymentRejected = "payment_rejected"
)

// FranchiseLead is a franchise-application funnel submission.
type FranchiseLead struct {
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	Phone      string    `bson:"phone" json:"phone"`
	City       string    `bson:"city" json:"city"`
	Investment string    `bson:"investment,omitempty" json:"investment,omitempty"`
	Message    string    `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
