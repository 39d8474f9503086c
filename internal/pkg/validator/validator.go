package validator

import (
	"github.com/futig/medwatch-backend/internal/config"
)

// Validator validates incoming requests and file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}
