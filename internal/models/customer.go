package models

type Customer struct {
	Phone       string  `json:"phone"`
	Name        string  `json:"name"`
	Email       *string `json:"email,omitempty"`
	Address     string  `json:"address"`
	TotalOrders int64   `json:"total_orders"`
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleGuest
}
