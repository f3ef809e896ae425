package models

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type SareeListResponse struct {
	Sarees []Saree `json:"sarees"`
}

// SareeSaveResponse is returned by add/update so the admin screen can show
// what happened to the uploaded image.
type SareeSaveResponse struct {
	Saree       Saree       `json:"saree"`
	Compression *ImageStats `json:"compression,omitempty"`
}

type ImageStats struct {
	OriginalSize   string `json:"original_size"`
	CompressedSize string `json:"compressed_size"`
	WasCompressed  bool   `json:"was_compressed"`
	PreviewURL     string `json:"preview_url"`
}

type PlaceOrderResponse struct {
	OrderID    int64  `json:"order_id"`
	Reference  string `json:"reference"`
	TotalPrice int64  `json:"total_price"`
}

type OrderListResponse struct {
	Orders       []Order             `json:"orders"`
	StatusCounts map[OrderStatus]int `json:"status_counts"`
}

type CustomerListResponse struct {
	Customers []Customer `json:"customers"`
}

type GateResponse struct {
	State   string `json:"state"`
	Granted bool   `json:"granted"`
	Message string `json:"message,omitempty"`
}

type ContactResponse struct {
	Phone           string `json:"phone"`
	PhoneDisplay    string `json:"phone_display"`
	AltPhone        string `json:"alt_phone"`
	AltPhoneDisplay string `json:"alt_phone_display"`
	WhatsAppLink    string `json:"whatsapp_link"`
}

type RoleResponse struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
