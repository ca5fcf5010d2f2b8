// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package database manages the demo's PostgreSQL side: connections
// authenticated with Entra tokens, schema setup for pgvector, the
// in-database principal grants, and the catalog items.
package database

import (
	"context"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/ragstack/ragstack/internal/azureauth"
)

var logger = loggo.GetLogger("ragstack.database")

// azureHostSuffix identifies managed Azure Database for PostgreSQL
// servers, which authenticate with Entra tokens instead of passwords.
const azureHostSuffix = ".database.azure.com"

// Config holds the connection settings for the application database.
type Config struct {
	Host     string
	Username string
	Database string
	Password string
	SSLMode  string
}

// ConfigFromEnv reads the connection settings from the environment.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		Host:     os.Getenv("POSTGRES_HOST"),
		Username: os.Getenv("POSTGRES_USERNAME"),
		Database: os.Getenv("POSTGRES_DATABASE"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		SSLMode:  os.Getenv("POSTGRES_SSL"),
	}
	if cfg.Host == "" || cfg.Username == "" || cfg.Database == "" {
		return nil, errors.New(
			"can't find POSTGRES_HOST, POSTGRES_USERNAME, and POSTGRES_DATABASE environment variables; " +
				"make sure the deployment hooks ran, or set them by hand",
		)
	}
	return cfg, nil
}

// IsAzure reports whether the host is a managed Azure server.
func (c *Config) IsAzure() bool {
	return strings.HasSuffix(c.Host, azureHostSuffix)
}

// EffectivePassword returns the password to present: an Entra access
// token for managed Azure servers, the configured password otherwise.
func (c *Config) EffectivePassword(ctx context.Context, cred azcore.TokenCredential) (string, error) {
	if !c.IsAzure() {
		logger.Debugf("authenticating to %q with a password", c.Host)
		return c.Password, nil
	}
	logger.Infof("authenticating to %q with an Entra token", c.Host)
	token, err := azureauth.AccessToken(ctx, cred, azureauth.DatabaseScope)
	if err != nil {
		return "", errors.Trace(err)
	}
	return token, nil
}
