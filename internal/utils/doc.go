// Package utils exposes reusable helpers consumed by multiple commands.
//
// ConfigurationLoader layers embedded defaults, configuration files and
// prefixed environment variables through Viper. LoggerFactory builds zap
// loggers for the structured and console formats.
package utils
