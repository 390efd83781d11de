package handler

import (
	"time"

	"github.com/peerrent/auth-service/internal/core/domain"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	SecretPin string `json:"secretPin"`
}

type requestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyRequest struct {
	Email   string `json:"email" validate:"required,email"`
	FullOtp string `json:"fullOtp"`
}

type registerResponse struct {
	Message string          `json:"message"`
	Account *domain.Account `json:"account"`
}

type requestCodeResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}
