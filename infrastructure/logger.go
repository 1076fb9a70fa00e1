package infrastructure

import (
	"go.uber.org/zap"

	"jobselect/config"
)

// NewLogger returns a development logger locally and a JSON production
// logger everywhere else.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
