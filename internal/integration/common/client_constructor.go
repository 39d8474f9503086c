package common

import (
	"github.com/futig/medwatch-backend/internal/config"
	pkgHTTP "github.com/futig/medwatch-backend/pkg/http"
	"go.uber.org/zap"
)

const userAgent = "medwatch-backend"

// NewBaseConnector builds the outbound client for the named collaborator
func NewBaseConnector(name string, cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	logger.Debug("configuring outbound client",
		zap.String("collaborator", name),
		zap.String("base_url", cfg.Url),
		zap.Duration("timeout", cfg.RequestTimeout),
		zap.Bool("authenticated", cfg.Token != ""),
	)

	return pkgHTTP.NewConnector(
		&pkgHTTP.ConnectorConfig{BaseURL: cfg.Url},
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithRequestIDPropagation(),
		pkgHTTP.WithAuthToken(cfg.Token),
		pkgHTTP.WithUserAgent(userAgent),
	)
}
