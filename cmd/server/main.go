package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dmaclay/backstop/internal/audit"
	"github.com/dmaclay/backstop/internal/config"
	"github.com/dmaclay/backstop/internal/handlers"
	"github.com/dmaclay/backstop/internal/logger"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Logging.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer zlog.Sync()

	trail := audit.NewTrail()
	if cfg.Audit.Enabled {
		trail.Register("file", audit.NewFileRecorder(cfg.Audit.File))
		zlog.Info("validation audit trail enabled", zap.String("file", cfg.Audit.File))
	}

	pricingHandler := handlers.NewPricingHandler(cfg, zlog, trail)

	r := mux.NewRouter()
	r.HandleFunc("/api/price", pricingHandler.PriceHandler).Methods("POST")
	r.HandleFunc("/api/credit", pricingHandler.CreditHandler).Methods("POST")
	r.HandleFunc("/api/parity", pricingHandler.ParityHandler).Methods("POST")
	r.HandleFunc("/api/healthz", pricingHandler.HealthHandler).Methods("GET")

	zlog.Info("backstop pricing server starting",
		zap.String("port", cfg.Server.Port),
		zap.Float64("pass_tolerance", cfg.Validation.PassTolerance),
		zap.Float64("halt_tolerance", cfg.Validation.HaltTolerance),
	)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Server.Port, r); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
