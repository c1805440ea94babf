package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	sc "github.com/dmitrijs2005/walletmeta/internal/server/config"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
)

const signatureMetaKey = "signature"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
)

// S3BlobStore keeps each blob as one object under metadata/<address>. The
// signature, if any, travels as user metadata on the object.
type S3BlobStore struct {
	client *s3.Client
	bucket string
}

// NewS3BlobStore builds a client for an S3-compatible endpoint using static
// credentials from cfg.
func NewS3BlobStore(ctx context.Context, cfg *sc.Config) (*S3BlobStore, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3BlobStore{client: client, bucket: cfg.S3Bucket}, nil
}

func objectKey(address string) string {
	return "metadata/" + address
}

func (s *S3BlobStore) Put(ctx context.Context, blob *models.MetadataBlob) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(blob.Address)),
		Body:        bytes.NewReader([]byte(blob.Payload)),
		ContentType: aws.String("text/plain"),
	}
	if blob.Signature != "" {
		in.Metadata = map[string]string{signatureMetaKey: blob.Signature}
	}
	if err := putObject(s.client, ctx, in); err != nil {
		return fmt.Errorf("s3 put: %w", err)
	}
	return nil
}

func (s *S3BlobStore) Get(ctx context.Context, address string) (*models.MetadataBlob, error) {
	out, err := getObject(s.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(address)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) || strings.Contains(err.Error(), "NotFound") {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("s3 get: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read: %w", err)
	}

	blob := &models.MetadataBlob{Address: address, Payload: string(data)}
	if out.Metadata != nil {
		blob.Signature = out.Metadata[signatureMetaKey]
	}
	if out.LastModified != nil {
		blob.UpdatedAt = *out.LastModified
	}
	return blob, nil
}
