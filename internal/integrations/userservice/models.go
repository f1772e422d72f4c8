package userservice

// Customer контактные данные пользователя из UserService
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Message string `json:"message"`
}
