// Package archive stores receipts of closed pots in S3-compatible object
// storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
	"github.com/google/uuid"
)

// Receipt is the JSON document written for every closed pot.
type Receipt struct {
	Pot       cryptox.Address `json:"pot"`
	Authority cryptox.Address `json:"authority"`
	Name      string          `json:"name"`
	Swept     uint64          `json:"swept"`
	Refunded  uint64          `json:"refunded"`
	CreatedAt uint64          `json:"created_at"`
	ClosedAt  uint64          `json:"closed_at"`
}

type Archiver interface {
	// Archive stores r and returns the object key.
	Archive(ctx context.Context, r Receipt) (string, error)
}

// Nop discards receipts. It is used when no bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, Receipt) (string, error) { return "", nil }

type S3Config struct {
	User     string
	Password string
	Bucket   string
	Region   string
	Endpoint string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archiver struct {
	client objectPutter
	bucket string
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// NewS3Archiver builds a client with static credentials. A non-empty
// Endpoint selects path-style addressing for MinIO.
func NewS3Archiver(ctx context.Context, c S3Config) (*S3Archiver, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.User, c.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archiver{client: client, bucket: c.Bucket}, nil
}

// ReceiptKey places receipts under the UTC day of closure.
func ReceiptKey(r Receipt) string {
	d := timex.FromUnix(r.ClosedAt).UTC()
	return fmt.Sprintf("receipts/%04d/%02d/%02d/%s-%s.json", d.Year(), d.Month(), d.Day(), r.Pot, uuid.New())
}

func (a *S3Archiver) Archive(ctx context.Context, r Receipt) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	key := ReceiptKey(r)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put receipt: %w", err)
	}
	return key, nil
}
