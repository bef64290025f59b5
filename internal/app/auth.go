package app

import (
	"crypto/subtle"

	"github.com/fanoutlabs/herald/internal/pkg/goerror"
	"github.com/fanoutlabs/herald/internal/pkg/router"
)

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// registerAuthEndpoint serves machine-to-machine token issuance for API
// clients listed in configuration.
func (a *App) registerAuthEndpoint() {
	a.router.POST("/api/v1/auth/token", func(r *router.Request) (any, error) {
		var req tokenRequest
		if err := r.DecodeBody(&req); err != nil {
			return nil, err
		}

		if req.ClientID == "" || req.ClientSecret == "" {
			return nil, goerror.NewInvalidInput(nil,
				"client_id", "client id and secret are required")
		}

		secret, ok := a.config.GetMap("auth.clients")[req.ClientID]
		if !ok || subtle.ConstantTimeCompare([]byte(secret), []byte(req.ClientSecret)) != 1 {
			return nil, goerror.NewBusiness("invalid client credentials", goerror.CodeUnauthorized)
		}

		token, err := a.jwt.Generate(req.ClientID)
		if err != nil {
			return nil, goerror.NewServer(err)
		}

		return tokenResponse{AccessToken: token, TokenType: "Bearer"}, nil
	})
}
