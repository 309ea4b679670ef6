package lifecycle

// Status tokens as they travel over the wire. The hyphen/underscore mix is
// what the backend actually emits; keep the literals, normalize on compare.
const (
	StatusPlaced          = "placed"
	StatusPaymentUploaded = "payment_uploaded"
	StatusPrinting        = "printing"
	StatusProcessing      = "processing"
	StatusDispatch        = "dispatch"
	StatusReadyForPlant   = "ready_for_plant"
	StatusPlantProcessing = "plant_processing"
	StatusDispatched      = "dispatched"
	StatusCompleted       = "completed"
	StatusDelivered       = "delivered"
	StatusDeclined        = "declined"
	StatusCancelled       = "cancelled"

	// Pseudo-status shown to customers before any payment proof exists. Never
	// stored on an order.
	StatusPaymentPending = "payment-pending"
)

// CustomerSequence is the progress rail shown on the customer order page.
// dispatch, dispatched and delivered all denote its terminal step.
func CustomerSequence() Sequence {
	return NewSequence(
		[]Step{
			{Status: StatusPlaced, Label: "Order Placed", Description: "We received your order"},
			{Status: StatusPaymentUploaded, Label: "Payment Uploaded", Description: "Payment proof under review"},
			{Status: StatusPrinting, Label: "Printing", Description: "Your labels are being printed"},
			{Status: StatusProcessing, Label: "Processing", Description: "Bottles are being labeled and packed"},
			{Status: StatusDispatch, Label: "Dispatch", Description: "On the way to you"},
		},
		map[string]string{
			StatusDispatched: StatusDispatch,
			StatusDelivered:  StatusDispatch,
		},
	)
}

// StaffSequence is the rail used by the printing and plant dashboards.
func StaffSequence() Sequence {
	return NewSequence(
		[]Step{
			{Status: StatusPlaced, Label: "Placed"},
			{Status: StatusPrinting, Label: "Printing"},
			{Status: StatusReadyForPlant, Label: "Ready for Plant"},
			{Status: StatusPlantProcessing, Label: "Plant Processing"},
			{Status: StatusDispatched, Label: "Dispatched"},
			{Status: StatusCompleted, Label: "Completed"},
		},
		map[string]string{
			StatusDispatch: StatusDispatched,
		},
	)
}
