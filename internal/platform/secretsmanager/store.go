package secretsmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/labels"
)

// AWS error codes mapped to store errors.
const (
	ResourceNotFoundException = "ResourceNotFoundException"
	ResourceExistsException   = "ResourceExistsException"
)

const secretDescription = "Kong Mesh zone secret managed by kmecs"

// ManagerAPI is the subset of the Secrets Manager client used by Store.
type ManagerAPI interface {
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	DeleteSecret(ctx context.Context, params *secretsmanager.DeleteSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error)
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// Store is a secrets.Store backed by Secrets Manager.
type Store struct {
	api      ManagerAPI
	logger   *slog.Logger
	newToken func() string
}

var _ secrets.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store operations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTokenGenerator overrides the client request token source.
func WithTokenGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newToken = fn
	}
}

// New wraps an existing API client.
func New(api ManagerAPI, opts ...Option) *Store {
	s := &Store{
		api:      api,
		logger:   slog.New(slog.DiscardHandler),
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig builds a Store from a loaded AWS config.
func NewFromConfig(cfg aws.Config, opts ...Option) *Store {
	return New(secretsmanager.NewFromConfig(cfg), opts...)
}

// Put creates the secret. Valid UTF-8 payloads are stored as SecretString,
// anything else as SecretBinary.
func (s *Store) Put(ctx context.Context, key string, payload []byte, tags map[string]string) (secrets.Reference, error) {
	input := &secretsmanager.CreateSecretInput{
		Name:               aws.String(key),
		Description:        aws.String(secretDescription),
		ClientRequestToken: aws.String(s.newToken()),
		Tags:               toTags(tags),
	}
	if utf8.Valid(payload) {
		input.SecretString = aws.String(string(payload))
	} else {
		input.SecretBinary = payload
	}

	out, err := s.api.CreateSecret(ctx, input)
	if err != nil {
		if hasCode(err, ResourceExistsException) {
			return "", fmt.Errorf("create secret %s: %w", key, secrets.ErrAlreadyExists)
		}
		return "", fmt.Errorf("create secret %s: %w", key, err)
	}

	ref := secrets.Reference(aws.ToString(out.ARN))
	s.logger.Debug("secret created", "key", key, "arn", ref.String())
	return ref, nil
}

// Get reads the current value behind ref.
func (s *Store) Get(ctx context.Context, ref secrets.Reference) ([]byte, error) {
	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref.String()),
	})
	if err != nil {
		if hasCode(err, ResourceNotFoundException) {
			return nil, fmt.Errorf("get secret %s: %w", ref, secrets.ErrNotFound)
		}
		return nil, fmt.Errorf("get secret %s: %w", ref, err)
	}
	if out.SecretString != nil {
		return []byte(*out.SecretString), nil
	}
	return out.SecretBinary, nil
}

// Delete removes the secret without a recovery window.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(key),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	})
	if err != nil {
		if hasCode(err, ResourceNotFoundException) {
			return fmt.Errorf("delete secret %s: %w", key, secrets.ErrNotFound)
		}
		return fmt.Errorf("delete secret %s: %w", key, err)
	}
	s.logger.Debug("secret deleted", "key", key)
	return nil
}

// Exists reports whether key names a live secret.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Lookup(ctx, key)
	return ok, err
}

// Lookup describes key. Secrets scheduled for deletion count as absent.
func (s *Store) Lookup(ctx context.Context, key string) (secrets.Reference, bool, error) {
	out, err := s.api.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		if hasCode(err, ResourceNotFoundException) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("describe secret %s: %w", key, err)
	}
	if out.DeletedDate != nil {
		return "", false, nil
	}
	return secrets.Reference(aws.ToString(out.ARN)), true, nil
}

func toTags(m map[string]string) []types.Tag {
	if len(m) == 0 {
		return nil
	}
	tags := make([]types.Tag, 0, len(m))
	for _, k := range labels.SortedKeys(m) {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(m[k])})
	}
	return tags
}

func hasCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
