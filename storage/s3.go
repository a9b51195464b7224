package storage

import (
	"context"
	"net/http"
	"time"

	"cms/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store talks to any S3-compatible store (AWS S3, Cloudflare R2, MinIO).
type S3Store struct {
	svc        *s3.S3
	bucket     string
	publicBase string
}

func NewS3Store() (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(config.S3_REGION),
		Endpoint:         aws.String(config.S3_ENDPOINT),
		Credentials:      credentials.NewStaticCredentials(config.S3_ACCESS_KEY, config.S3_SECRET_KEY, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return &S3Store{
		svc:        s3.New(sess),
		bucket:     config.S3_BUCKET,
		publicBase: config.PUBLIC_BASE_URL,
	}, nil
}

func (s *S3Store) PresignPut(storageKey, contentType string, ttl time.Duration) (string, error) {
	req, _ := s.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storageKey),
		ContentType: aws.String(contentType),
	})
	return req.Presign(ttl)
}

func (s *S3Store) Head(ctx context.Context, storageKey string) (int64, error) {
	out, err := s.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, ErrObjectMissing
		}
		return 0, err
	}
	return aws.Int64Value(out.ContentLength), nil
}

func (s *S3Store) Delete(ctx context.Context, storageKey string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	return err
}

func (s *S3Store) PublicURL(storageKey string) string {
	return joinPublicURL(s.publicBase, storageKey)
}

func isNotFound(err error) bool {
	if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
