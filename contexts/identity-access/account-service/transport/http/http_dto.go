package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type LoginRequest struct {
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

type LoginResponse struct {
	Message      string `json:"message"`
	SessionToken string `json:"session_token"`
	UserID       string `json:"user_id"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type UserSummary struct {
	ID           string   `json:"id"`
	MobileNumber string   `json:"mobile_number"`
	Active       bool     `json:"active"`
	Roles        []string `json:"roles"`
}

type DeactivateResponse struct {
	Message string `json:"message"`
}

type GrantRoleRequest struct {
	Role string `json:"role"`
}

type GrantRoleResponse struct {
	Message string `json:"message"`
}
