// Command devtoken prints a signed bearer token for local testing.
//
//	JWT_SECRET=secret go run ./cmd/devtoken -sub vendor-1 -role vendor
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"afrilink/internal/auth"
	"afrilink/internal/config"
	"afrilink/internal/domain"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	sub := flag.String("sub", "", "user id")
	role := flag.String("role", string(domain.RoleVendor), "vendor, admin or affiliate")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	conf := config.CreateNewConfig()
	if conf.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	token, err := auth.NewAuthenticator(conf.JWTSecret).Issue(domain.Actor{ID: *sub, Role: domain.Role(*role)}, *ttl)
	if err != nil {
		log.Fatal().Err(err).Str("sub", *sub).Str("role", *role).Msg("cannot issue token")
	}
	fmt.Println(token)
}
