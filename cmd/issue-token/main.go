package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stemsi/marksheet-analytics/internal/config"
	"github.com/stemsi/marksheet-analytics/internal/logger"
	"github.com/stemsi/marksheet-analytics/internal/service"
)

func main() {
	subject := flag.String("subject", "", "who the token is issued to (prompted when empty)")
	expiry := flag.Duration("expiry", 0, "token lifetime, defaults to JWT_EXPIRY_HOURS")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if *expiry > 0 {
		cfg.JWTExpiry = *expiry
	}

	// ─── CLI Input ─────────────────────────────────────────────────────
	name := strings.TrimSpace(*subject)
	if name == "" {
		fmt.Fprint(os.Stderr, "Issue token for: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		name = strings.TrimSpace(line)
	}
	if name == "" {
		log.Fatal().Msg("A subject is required")
	}

	authService := service.NewAuthService(cfg)
	token, err := authService.GenerateAdminToken(name)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	log.Info().
		Str("subject", name).
		Time("expires_at", time.Now().Add(cfg.JWTExpiry)).
		Msg("Admin token issued")
	fmt.Println(token)
}
