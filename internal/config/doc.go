// Package config loads the ecomdash configuration.
//
// # Configuration Sources
//
// Values are resolved in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml, or the file named by ECOMDASH_CONFIG_FILE
//	3. Default values (lowest priority)
//
// A .env file in the working directory is loaded into the process
// environment before the variables are read. Variables already set in the
// environment are not overwritten by it.
//
// # Environment Variables
//
// Every variable carries the ECOMDASH prefix followed by the section name:
//
//	ECOMDASH_SERVER_PORT=8080
//	ECOMDASH_DATASET_FILE=data/orders.csv
//	ECOMDASH_DATASET_LOCALE=es-CO
//	ECOMDASH_DATASET_CURRENCY=AUD
//	ECOMDASH_LOGGING_LEVEL=debug
//	ECOMDASH_TELEMETRY_TRACES_EXPORTER=stdout
//
// envconfig falls back to the bare tag name when the prefixed variable is
// unset, so tags avoid common names such as PATH and HOST.
package config
