package main

import (
	"context"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/memoriesapp/memories/internal/server"
	"github.com/memoriesapp/memories/internal/server/config"
)

// buildIdentityKeys returns the verification key resolver for federated
// tokens. Development deployments share an HMAC secret with the token
// issuer; production deployments should swap in a JWKS-backed resolver.
func buildIdentityKeys() jwt.Keyfunc {
	secret := os.Getenv("MEMORIES_IDP_SECRET")
	if secret == "" {
		secret = "dev-idp-secret"
	}
	return func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}
}

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg, buildIdentityKeys())
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if owner := os.Getenv("MEMORIES_DEMO_USER"); owner != "" {
		if err := app.SeedDemo(ctx, owner); err != nil {
			fmt.Fprintf(os.Stderr, "demo seed failed: %v\n", err)
		}
	}

	app.Run(ctx)
}
