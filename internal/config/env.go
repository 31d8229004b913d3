package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/joho/godotenv"
)

// LoadEnv copies secrets from AWS Secrets Manager (when a secret id is set)
// into the environment, then loads a .env file. Neither step is fatal.
func LoadEnv(ctx context.Context, logger *slog.Logger) {
	if err := loadAWSSecretsIntoEnv(ctx, logger); err != nil {
		logger.Warn("skipping AWS Secrets Manager load", "error", err)
	}
	loadDotEnv(logger)
}

func loadDotEnv(logger *slog.Logger) {
	envFile := os.Getenv("FEEDBACK_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug("no .env file loaded", "path", envFile)
	}
}

func loadAWSSecretsIntoEnv(ctx context.Context, logger *slog.Logger) error {
	secretID := os.Getenv("FEEDBACK_AWS_SECRET_ID")
	if secretID == "" {
		return nil
	}

	versionStage := os.Getenv("FEEDBACK_AWS_SECRET_VERSION_STAGE")
	if versionStage == "" {
		versionStage = "AWSCURRENT"
	}
	overwrite := strings.EqualFold(os.Getenv("FEEDBACK_AWS_SECRET_OVERWRITE"), "true")

	opts := []func(*awsconfig.LoadOptions) error{}
	if region := os.Getenv("FEEDBACK_AWS_REGION"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	output, err := secretsmanager.NewFromConfig(cfg).GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String(versionStage),
	})
	if err != nil {
		return fmt.Errorf("fetching secret %s: %w", secretID, err)
	}

	var payload string
	switch {
	case output.SecretString != nil:
		payload = *output.SecretString
	case len(output.SecretBinary) > 0:
		payload = string(output.SecretBinary)
	default:
		return fmt.Errorf("secret %s has no payload", secretID)
	}

	applied, err := applySecretJSON(payload, overwrite)
	if err != nil {
		return fmt.Errorf("parsing secret %s: %w", secretID, err)
	}
	logger.Debug("loaded env vars from AWS Secrets Manager", "secret_id", secretID, "count", applied)
	return nil
}

// applySecretJSON sets every key of a flat JSON object as an environment
// variable. Existing variables are kept unless overwrite is set.
func applySecretJSON(payload string, overwrite bool) (int, error) {
	var kv map[string]any
	if err := json.Unmarshal([]byte(payload), &kv); err != nil {
		return 0, err
	}

	applied := 0
	for key, val := range kv {
		if !overwrite && os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return applied, fmt.Errorf("setting env %s: %w", key, err)
		}
		applied++
	}
	return applied, nil
}
