package main

import (
	"flag"
	"strings"

	"feeledger/config"
	"feeledger/database"
	"feeledger/middleware"
	"feeledger/router"

	"github.com/sirupsen/logrus"
)

// @title Fee Ledger API
// @version 1.0
// @description Student fee ledger and payment reconciliation API: fee/fine obligations, payments with receipts, bulk cohort operations and collection reports
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "external config file path (optional)")
	flag.StringVar(&configFile, "c", "", "external config file path (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 8080 or :8080")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
}

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if showVersion {
		log.Info("feeledger v1.0.0")
		return
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// command-line port overrides the config file
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Infof("port set from command line: %s", port)
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	middleware.InitJWT(cfg)

	r := router.SetupRouter(cfg, log)

	log.Infof("fee ledger listening on %s", cfg.Server.Port)
	log.Infof("swagger: http://localhost%s/swagger/index.html", cfg.Server.Port)

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
