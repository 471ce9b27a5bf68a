// Package config provides configuration management for the bucket manager.
//
// It utilizes Viper for loading configuration from environment variables,
// a .env file and an optional config file (config.yaml by default, or the file
// named by CONFIG_FILE).
//
// # Configuration Structure
//
//   - Server: HTTP server settings (port, API key, metrics)
//   - Log: Logging level and format
//   - Buckets: the list of bucket descriptors
//
// Scalar settings take their defaults from `default` struct tags and can be
// overridden with environment variables (SERVER_PORT, LOG_LEVEL, ...). The bucket
// list is read from the config file only:
//
//	buckets:
//	  - qualifier: media
//	    primary: true
//	    endpoint: https://oss.example.com
//	    bucket: media
//	    credentials: /etc/bucket-manager/media.json
//	  - qualifier: backups
//	    endpoint: http://minio.internal:9000
//	    bucket: backups
//	    access_key: ...
//	    secret_key: ...
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg, err := bucket.Build(cfg.Buckets)
package config
