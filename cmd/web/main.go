package main

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"ballot-box/pkg/common/config"
	"ballot-box/pkg/core/auth"
	"ballot-box/pkg/core/model"
	"ballot-box/pkg/core/store"
	"ballot-box/pkg/core/voting"
	"ballot-box/pkg/web/router"
)

func main() {
	cfg := config.Load()
	hlog.Infof("Starting in %s mode", cfg.Env)

	db, err := cfg.InitDB()
	if err != nil {
		hlog.Fatalf("Failed to initialize database: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		hlog.Fatalf("Failed to migrate schema: %v", err)
	}

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret)
	svc := voting.New(store.NewGormStore(db), tokens, cfg.Env)

	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)

	if err := router.RegisterAPIs(h, cfg, svc, db); err != nil {
		hlog.Fatalf("Failed to register routes: %v", err)
	}

	h.Spin()
}
