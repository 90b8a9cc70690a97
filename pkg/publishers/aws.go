package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// AWSAccess holds optional overrides shared by the SQS and SNS sinks. Left empty,
// the default AWS credential chain and endpoints apply.
type AWSAccess struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

func (a AWSAccess) sanitized() AWSAccess {
	a.Endpoint = strings.TrimSpace(a.Endpoint)
	a.AccessKeyID = strings.TrimSpace(a.AccessKeyID)
	a.SecretAccessKey = strings.TrimSpace(a.SecretAccessKey)
	a.SessionToken = strings.TrimSpace(a.SessionToken)
	return a
}

func (a AWSAccess) validate(prefix, id string) error {
	if (a.AccessKeyID == "") != (a.SecretAccessKey == "") {
		return fmt.Errorf("%s.access_key_id and %s.secret_access_key must be set together for publisher %q", prefix, prefix, id)
	}
	return nil
}

func loadAWSConfig(ctx context.Context, region string, access AWSAccess) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if access.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(access.AccessKeyID, access.SecretAccessKey, access.SessionToken),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if access.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(access.Endpoint)
	}
	return cfg, nil
}
