package main

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolportal_backend/internals/configs"
	"schoolportal_backend/internals/databases"
	authService "schoolportal_backend/internals/features/users/auth/service"
)

// env is what every subcommand except serve needs: config, logger and a DB handle.
type env struct {
	cfg *configs.Config
	log *zap.Logger
	db  *gorm.DB
}

func openEnv() (*env, error) {
	cfg := configs.LoadEnv()
	log := configs.NewLogger(cfg)
	db, err := databases.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) close() {
	_ = databases.Close(e.db)
	_ = e.log.Sync()
}

func (e *env) authService() *authService.AuthService {
	return authService.NewAuthService(e.db, authService.NewTokenService(e.cfg.JWTSecret, e.cfg.JWTTTL), e.log)
}
