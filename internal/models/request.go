package models

type PlaceOrderRequest struct {
	SareeID       int64  `json:"saree_id" example:"1"`
	Quantity      int64  `json:"quantity" example:"1"`
	CustomerName  string `json:"customer_name" example:"Lakshmi"`
	CustomerPhone string `json:"customer_phone" example:"9876543210"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" example:"Confirmed"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" example:"Paid"`
}

type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

type GateRequest struct {
	// Candidate is an owner phone number (any formatting) or the admin password.
	Candidate string `json:"candidate"`
}

type AssignRoleRequest struct {
	Role Role `json:"role" example:"admin"`
}
