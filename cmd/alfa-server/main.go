package main

import (
	"flag"
	"net/http"

	"alfagate-backend/lib/configutil"
	"alfagate-backend/lib/serviceutil"
	"alfagate-backend/lib/sqliteutil"
	"alfagate-backend/services/portal"
	"alfagate-backend/services/portal/db"
)

type Config struct {
	Port     int            `json:"port"`
	Database string         `json:"database"`
	Portal   portal.Options `json:"portal"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}

	database, err := sqliteutil.OpenDB(db.Schema, cfg.Database)
	if err != nil {
		serviceutil.Fatal("open database", err)
	}
	service := portal.NewService(database, cfg.Portal)

	mux := http.NewServeMux()
	RegisterRoutes(mux, service)

	go serviceutil.StartHttpServer(cfg.Port, mux)
	<-ctx.Done()
}
