package dto

// RegisterRequest represents a signup request. Role is deliberately absent:
// it is server-assigned on creation.
type RegisterRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// LoginRequest represents a credentials login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest asks for a reset code to be emailed.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest verifies a 6-digit code for the given purpose.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
	Type  string `json:"type" binding:"required"`
}

// VerifyOTPResponse returns the opaque handle proving the OTP step was
// completed. The handle is re-checked by the reset step.
type VerifyOTPResponse struct {
	OTPID string `json:"otp_id"`
}

// ResetPasswordRequest completes a password reset using a verified OTP handle.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
	OTPID       string `json:"otp_id" binding:"required,uuid"`
}

// ChangePasswordRequest replaces the password of an authenticated user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// SetPasswordRequest sets an initial password on an OAuth-only account.
type SetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// UpdateRoleRequest is the admin-only role mutation payload.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN CUSTOMER"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in an auth response.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// UserResponse represents a full user profile response.
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Phone       *string `json:"phone"`
	Company     *string `json:"company"`
	Bio         *string `json:"bio"`
	ImageURL    *string `json:"image_url"`
	HasPassword bool    `json:"has_password"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	LastLoginAt *string `json:"last_login_at"`
}

// SuccessResponse represents a generic success message.
type SuccessResponse struct {
	Message string `json:"message"`
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response. Details carries field-level
// validation errors; it is omitted for authentication failures, which are
// always generic.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
