package handler

import (
	"github.com/blockduel/blockduel-go/internal/api/apierr"
)

// Re-export error utilities for handler convenience
var (
	WriteError             = apierr.WriteError
	NewInvalidRequestError = apierr.NewInvalidRequestError
	NewInvalidEventError   = apierr.NewInvalidEventError
	NewInternalError       = apierr.NewInternalError
)
