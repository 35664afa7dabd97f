package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"gorm.io/gorm"

	"ballot-box/pkg/common/config"
	"ballot-box/pkg/core/voting"
	"ballot-box/pkg/web/handler"
	"ballot-box/pkg/web/middleware"
)

// RegisterAPIs wires the global middleware chain and all routes.
func RegisterAPIs(h *server.Hertz, cfg *config.Config, svc *voting.Service, db *gorm.DB) error {
	graphqlHandler, err := handler.NewGraphQLHandler(svc)
	if err != nil {
		return err
	}
	healthHandler := handler.NewHealthHandler(db)

	h.Use(
		middleware.Recovery(cfg),
		middleware.Logger(),
		middleware.CORS(cfg.CORS),
		middleware.AuthContext(svc),
	)

	h.GET("/health", healthHandler.Check)
	h.GET("/graphql", graphqlHandler.Serve)
	h.POST("/graphql", graphqlHandler.Serve)

	return nil
}
