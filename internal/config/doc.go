// Package config provides comprehensive configuration management for the calendar-backend application.
//
// This package demonstrates enterprise-grade configuration management with:
//   - Multiple configuration sources (YAML files, environment variables)
//   - Environment-specific configurations
//   - Configuration validation with detailed error messages
//   - Type safety and documentation
//
// # Architecture
//
// The configuration system follows these design principles:
//   - Configuration as Code: All configuration is versioned and documented
//   - Fail Fast: Invalid configuration causes immediate startup failure
//   - Secure by Default: Production requires explicit security settings
//   - Environment Parity: Similar configuration structure across environments
//
// # Configuration Hierarchy
//
// Configuration is loaded from multiple sources in priority order (highest wins):
//   1. Default values in code (lowest priority)
//   2. base.yaml - Common configuration for all environments
//   3. {environment}.yaml - Environment-specific overrides
//   4. local.yaml - Local developer overrides (development only, gitignored)
//   5. A fixed set of environment variables re-applied after file overlays
//      (SERVER_PORT, SERVER_HOST, STORAGE_DYNAMODB_TABLE, AWS_REGION,
//      ENABLE_METRICS, ENABLE_CACHING, JWT_SECRET, ENABLE_AUTH); any other
//      environment variable only sets a default value in step 1
//
// # Usage Examples
//
// cmd/server's entrypoint:
//
//	cfg, err := config.LoadWithLoader(configPath)
//	if err != nil {
//	    log.Fatal("Invalid configuration:", err)
//	}
//
// Environment-variable-only loading (what LoadWithLoader layers files on top of):
//
//	cfg := config.LoadConfig()
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal("Invalid configuration:", err)
//	}
//
// Using configuration in your application:
//
//	server := &http.Server{
//	    Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
//	    ReadTimeout:  cfg.Server.ReadTimeout,
//	    WriteTimeout: cfg.Server.WriteTimeout,
//	}
//
// # Environment Variables
//
// All configuration values can be overridden via environment variables.
// The naming convention is SECTION_KEY (uppercase, underscore-separated);
// feature flags use ENABLE_* without a section prefix.
//
// Examples:
//   - SERVER_PORT=8080
//   - STORAGE_DYNAMODB_TABLE=calendar-prod
//   - ENABLE_METRICS=true
//   - AWS_REGION=us-west-2
//
// # Secrets Management
//
// Sensitive values should NEVER be committed to version control.
// Set them via environment variables (JWT_SECRET, REDIS_PASSWORD, ...)
// or an external secrets manager in production.
//
// # Validation
//
// Configuration validation happens at multiple levels:
//   1. Struct tags using go-playground/validator
//   2. Custom business rule validation
//   3. Environment-specific validation
//
// Example struct tags:
//
//	type Server struct {
//	    Port int `validate:"required,min=1,max=65535"`
//	    Host string `validate:"required,hostname|ip"`
//	}
//
// # Feature Flags
//
// Feature flags enable gradual rollout and A/B testing:
//
//	if cfg.Features.EnableAIProcessing {
//	    // New AI feature code
//	}
//
// # Environment-Specific Behavior
//
// The configuration system enforces environment-specific rules:
//
// Development:
//   - Debug logging enabled
//   - Authentication optional
//   - Relaxed security settings
//
// Staging:
//   - Production-like configuration
//   - Metrics enabled
//   - Moderate capacity settings
//
// Production:
//   - Metrics required
//   - Authentication required
//   - Strict security settings
//   - No debug endpoints
//
// # Best Practices
//
//  1. Always validate configuration on startup
//  2. Use structured logging for configuration values (exclude secrets)
//  3. Use feature flags for gradual rollout
//  4. Keep environment configurations similar to avoid surprises
//  5. Use smallest acceptable values for limits and timeouts
//  6. Enable all security features in production
//
// # Testing
//
// For testing, use in-memory configuration:
//
//	cfg := &config.Config{
//	    Environment: config.Development,
//	    Server: config.Server{Port: 8080},
//	    // ... other required fields
//	}
//
// # Security Considerations
//
//  1. Never log sensitive configuration values
//  2. Use environment variables or secrets management for credentials
//  3. Validate all external configuration input
//  4. Use principle of least privilege for defaults
//  5. Require explicit opt-in for dangerous features
//  6. Audit configuration changes in production
//
// # Common Issues and Solutions
//
// Issue: Configuration validation fails on startup
// Solution: Check logs for specific validation errors, ensure all required fields are set
//
// Issue: Environment variables not taking effect
// Solution: Verify variable names match convention (SECTION_KEY), check for typos
//
// Issue: Secrets appearing in logs
// Solution: Review logging configuration, ensure sensitive fields are marked with `log:"-"` tag
//
// Issue: Different behavior between environments
// Solution: Compare environment configurations, ensure feature flags are consistent
package config