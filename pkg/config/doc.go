// Package config holds the environment-driven configuration structs shared
// by the openshelf binaries. Values are read with cleanenv.ReadEnv.
package config
