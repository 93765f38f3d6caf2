package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the app configuration, populated once at startup.
var Conf *Config

type Config struct {
	Debug        bool
	TestMode     bool
	Env          string
	AppName      string
	SecretKey    string
	Build        string
	RollbarToken string

	// snapshot files
	AccountsFile string
	DataFile     string

	Server struct {
		Host                      string
		Addr                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}
}

func init() {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Presente")
	conf.SetDefault("secretKey", "y0(w3n+u5l$=#^ih*a&o9r!pqdz7@4c2(jx)gm8ke6vf5b1t_s")
	conf.SetDefault("accountsFile", "usuarios.json")
	conf.SetDefault("dataFile", "datos.json")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	Conf = &Config{
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		Env:          env,
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		Build:        conf.GetString("build"),
		RollbarToken: conf.GetString("rollbarToken"),
		AccountsFile: conf.GetString("accountsFile"),
		DataFile:     conf.GetString("dataFile"),
	}
	Conf.Server.Host = conf.GetString("serverHost")
	Conf.Server.Addr = conf.GetString("serverAddr")
	Conf.Server.JWTExpirationDelta = conf.GetDuration("jwtExpirationDelta")
	Conf.Server.JWTRefreshExpirationDelta = conf.GetDuration("jwtRefreshExpirationDelta")
}
