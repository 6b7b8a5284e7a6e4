package adapters

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

const s3AudioPrefix = "audio/"

type s3AudioStore struct {
	logger   outbound.LoggerPort
	s3Svc    s3iface.S3API
	s3Config *config.AudioStoreConfig
}

func NewS3AudioStore(s3Svc s3iface.S3API, s3Config *config.AudioStoreConfig, logger outbound.LoggerPort) outbound.AudioStorePort {
	return &s3AudioStore{
		logger:   logger,
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

func (s *s3AudioStore) Save(ctx context.Context, content io.Reader) (domain.AudioArtifact, error) {
	payload, err := io.ReadAll(content)
	if err != nil {
		s.logger.Error(err, "Failed to drain the audio stream")
		return domain.AudioArtifact{}, err
	}

	artifact := domain.NewAudioArtifact(newArtifactID(), payload)
	key := s.itemKey(artifact.FileName())

	putInput := &s3.PutObjectInput{
		Bucket:        aws.String(s.s3Config.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String(domain.AudioMimeType),
	}

	_, err = s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload object to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    key,
		})
		return domain.AudioArtifact{}, err
	}

	s.logger.DebugWithFields("Successfully uploaded object to S3", map[string]interface{}{
		"bucket": s.s3Config.BucketName,
		"key":    key,
	})

	return artifact, nil
}

func (s *s3AudioStore) Load(ctx context.Context, fileName string) (io.ReadCloser, error) {
	if _, ok := artifactIDFromFileName(fileName); !ok {
		return nil, &domain.NotFoundError{ID: fileName}
	}

	out, err := s.s3Svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(s.itemKey(fileName)),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, &domain.NotFoundError{ID: fileName}
		}
		s.logger.ErrorWithFields(err, "Failed to fetch object from S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"file":   fileName,
		})
		return nil, err
	}
	return out.Body, nil
}

func (s *s3AudioStore) itemKey(fileName string) string {
	return s3AudioPrefix + fileName
}
