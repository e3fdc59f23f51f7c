package app

import (
	"fmt"

	"github.com/chatinsight/core/internal/middleware"
	"github.com/chatinsight/core/internal/modules/chat"
	"github.com/chatinsight/core/internal/modules/health"
	"github.com/chatinsight/core/internal/modules/importer"
	"github.com/chatinsight/core/internal/modules/insight"
	"github.com/chatinsight/core/internal/modules/user"
	"github.com/chatinsight/core/internal/pkg/jwt"
)

func (a *App) registerRoutes() error {
	signer, err := jwt.NewSigner(a.cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	checks := []health.Check{{Name: "store", Ping: a.store.Ping}}
	if a.redis != nil {
		checks = append(checks, health.Check{Name: "redis", Ping: a.redis.Ping})
	}
	health.RegisterRoutes(a.router, checks...)

	api := a.router.Group(a.cfg.APIPrefix)
	if a.cfg.APIPrefix != "/" {
		health.RegisterRoutes(api, checks...)
	}
	authMW := middleware.Auth(a.store, signer, a.logger.Named("auth"))

	chat.NewHandler(chat.NewService(a.store), a.logger.Named("chat")).RegisterRoutes(api, authMW)

	insightLog := a.logger.Named("insight")
	selector := insight.NewSelector(a.cfg.LLM, insightLog)
	insightSvc := insight.NewService(a.store, a.store, selector, insightLog)
	insight.NewHandler(insightSvc, insightLog).RegisterRoutes(api, authMW)

	userSvc := user.NewService(a.store, a.store, signer, a.cfg.AccessTokenTTL())
	user.NewHandler(userSvc).RegisterRoutes(api, authMW)

	importLog := a.logger.Named("import")
	importer.NewHandler(importer.NewService(a.store, importLog), importLog).RegisterRoutes(api, authMW)
	return nil
}
