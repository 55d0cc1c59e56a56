// Package domain holds DTOs for the session http contract
package domain

// PredictInput is the body of POST /session/predict
type PredictInput struct {
	Text string `json:"text" validate:"required,notblank,max=20000" example:"Tôi ghét xxxx"`
}

// ModeInput is the body of PUT /session/mode
type ModeInput struct {
	Mode string `json:"mode" validate:"required,display_mode" example:"redact"`
}

// ModeOutput reports the active display mode
type ModeOutput struct {
	Mode string `json:"mode" example:"highlight"`
}
