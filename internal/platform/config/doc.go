// Package config loads server configuration from the environment.
//
// An optional .env file is read with godotenv, then variables are mapped onto
// Config via go-simpler/env struct tags and validated.
package config
