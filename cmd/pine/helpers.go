package main

import (
	"os"

	"pinecli/internal/api"
	"pinecli/internal/config"
)

// credentialsPath resolves the credential file location. PINE_CONFIG
// overrides the default for tests and unusual setups.
func credentialsPath() string {
	if p := os.Getenv("PINE_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath()
}

// requireClient loads credentials and builds an authenticated API client,
// failing with the not-logged-in error when credentials are missing.
func requireClient() (*api.Client, *config.Credentials, error) {
	creds, err := config.RequireAuth(credentialsPath())
	if err != nil {
		return nil, nil, err
	}
	client := api.New(api.Config{
		BaseURL:     creds.ResolveBaseURL(""),
		AccessToken: creds.AccessToken,
		UserID:      creds.UserID,
	})
	return client, creds, nil
}
