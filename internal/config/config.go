package config

import (
	"log/slog"

	"github.com/JuanAndresGH-hub/dulces-makertplace/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		panic("error while loading .env file: " + err.Error())
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/marketplace-svc")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}

	// Secrets stay in the environment; viper keys are their lookup names.
	viper.MustBindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("auth.admin_invite_code", "ADMIN_INVITE_CODE")
	_ = viper.BindEnv("auth.admin_email", "ADMIN_EMAIL")
	_ = viper.BindEnv("auth.admin_password", "ADMIN_PASSWORD")

	SetupLogger()
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
