package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/funnytourism/tourism-api/internal/config"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// secretFetcher is the part of the Secrets Manager client we use.
type secretFetcher interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var newSecretFetcher = func(ctx context.Context) (secretFetcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(awsCfg), nil
}

// retrieveCredentials prefers DB_USERNAME/DB_PASSWORD and falls back to the
// JSON secret named by DB_SECRET_ID.
func retrieveCredentials(ctx context.Context, cfg config.DatabaseConfig) (string, string, error) {
	if cfg.Username != "" && cfg.Password != "" {
		return cfg.Username, cfg.Password, nil
	}
	if cfg.SecretID == "" {
		return "", "", errors.New("database credentials missing: set DB_USERNAME/DB_PASSWORD or DB_SECRET_ID")
	}

	client, err := newSecretFetcher(ctx)
	if err != nil {
		return "", "", fmt.Errorf("load aws config: %w", err)
	}
	return fetchCredentials(ctx, client, cfg.SecretID)
}

func fetchCredentials(ctx context.Context, client secretFetcher, secretID string) (string, string, error) {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", "", fmt.Errorf("get secret %s: %w", secretID, err)
	}
	if result.SecretString == nil {
		return "", "", fmt.Errorf("secret %s has no string value", secretID)
	}

	var secret Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return "", "", fmt.Errorf("decode secret %s: %w", secretID, err)
	}
	return secret.Username, secret.Password, nil
}
