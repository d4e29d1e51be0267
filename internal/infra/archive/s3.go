package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/practice-scheduler/internal/config"
	"github.com/BruksfildServices01/practice-scheduler/internal/models"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store copies stored intake submissions to S3. With an empty bucket every
// call is a no-op.
type Store struct {
	bucket string
	client S3API
	logger zerolog.Logger
}

func NewStore(client S3API, bucket string, logger zerolog.Logger) *Store {
	return &Store{bucket: bucket, client: client, logger: logger}
}

// NewS3Client builds a client from static settings. S3_ENDPOINT switches
// to path-style addressing for MinIO and localstack.
func NewS3Client(cfg config.ArchiveConfig) *s3.Client {
	opts := s3.Options{Region: cfg.Region}

	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return s3.New(opts)
}

func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.client != nil
}

type submissionRecord struct {
	ID            string          `json:"id"`
	AppointmentID string          `json:"appointment_id"`
	ClientID      string          `json:"client_id"`
	TemplateID    string          `json:"template_id"`
	Answers       json.RawMessage `json:"answers"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

func SubmissionKey(s *models.IntakeSubmission) string {
	return fmt.Sprintf("intake/v1/%s/%s.json", s.AppointmentID, s.ClientID)
}

func (s *Store) ArchiveSubmission(ctx context.Context, sub *models.IntakeSubmission) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(submissionRecord{
		ID:            sub.ID,
		AppointmentID: sub.AppointmentID,
		ClientID:      sub.ClientID,
		TemplateID:    sub.TemplateID,
		Answers:       json.RawMessage(sub.AnswersJSON),
		SubmittedAt:   sub.SubmittedAt,
	})
	if err != nil {
		return errors.Wrap(err, "archive: marshal submission")
	}

	key := SubmissionKey(sub)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return errors.Wrapf(err, "archive: s3 put %s", key)
	}

	s.logger.Debug().
		Str("submission_id", sub.ID).
		Str("s3_key", key).
		Msg("archived intake submission")

	return nil
}
