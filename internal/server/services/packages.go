package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/tutorsync/internal/server/config"
	"github.com/dmitrijs2005/tutorsync/internal/server/models"
	"github.com/dmitrijs2005/tutorsync/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// PackageService registers deployment packages and hands out presigned
// object storage URLs for them.
type PackageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewPackageService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *PackageService {
	return &PackageService{db: db, repomanager: repomanager, config: config}
}

func GetRandomStorageKey(version string) string {
	d := time.Now()
	return fmt.Sprintf("packages/%d/%02d/%02d/%s-%v.zip", d.Year(), d.Month(), d.Day(), version, uuid.New())
}

func (s *PackageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload registers a pending package for version and returns it
// together with a presigned PUT URL.
func (s *PackageService) PresignUpload(ctx context.Context, version string) (*models.DeploymentPackage, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, "", err
	}

	p := &models.DeploymentPackage{
		ID:           uuid.NewString(),
		Version:      version,
		StorageKey:   GetRandomStorageKey(version),
		UploadStatus: models.UploadStatusPending,
	}

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(p.StorageKey),
	}, s3.WithPresignExpires(s.config.PackageURLExpiry))
	if err != nil {
		return nil, "", err
	}

	if err := s.repomanager.Packages(s.db).Create(ctx, p); err != nil {
		return nil, "", err
	}

	return p, req.URL, nil
}

func (s *PackageService) MarkUploaded(ctx context.Context, id string) error {
	return s.repomanager.Packages(s.db).MarkUploaded(ctx, id)
}

// Latest returns the newest completed package and a presigned GET URL for it.
func (s *PackageService) Latest(ctx context.Context) (*models.DeploymentPackage, string, error) {
	p, err := s.repomanager.Packages(s.db).Latest(ctx)
	if err != nil {
		return nil, "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, "", err
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(p.StorageKey),
	}, s3.WithPresignExpires(s.config.PackageURLExpiry))
	if err != nil {
		return nil, "", err
	}

	return p, req.URL, nil
}
