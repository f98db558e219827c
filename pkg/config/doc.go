// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each infrastructure package declares its own Config struct with `env`
// tags; the application composes them at startup:
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
package config
