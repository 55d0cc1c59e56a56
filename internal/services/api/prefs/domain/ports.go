package domain

import "context"

// ServicePort is what other modules consume from prefs
type ServicePort interface {
	Threshold() int
	SetThreshold(ctx context.Context, v int) (int, error)
}
