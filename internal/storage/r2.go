package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/logpush-viewer/backend/internal/config"
	"github.com/logpush-viewer/backend/internal/models"
)

// Client reads logpush objects from an R2 bucket via the S3-compatible API.
type Client struct {
	s3     *s3.Client
	bucket string
	log    *logrus.Logger
}

// NewClient builds a bucket client from explicit configuration. The client
// is constructed once per process and injected into its consumers.
func NewClient(cfg config.StorageConfig, log *logrus.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("loading storage credentials: %w", err)
	}

	endpoint := cfg.Endpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3:     client,
		bucket: cfg.Bucket,
		log:    log,
	}, nil
}

// ListEnvironments returns the top-level environment folders.
func (c *Client) ListEnvironments(ctx context.Context) ([]string, error) {
	out, err := c.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.bucket),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, fmt.Errorf("listing environments: %w", err)
	}

	var environments []string
	for _, p := range out.CommonPrefixes {
		environments = append(environments, strings.TrimSuffix(aws.ToString(p.Prefix), "/"))
	}
	return environments, nil
}

// ListDates returns available date folders sorted by date descending.
func (c *Client) ListDates(ctx context.Context, environment string, limit int) ([]models.DateFolder, error) {
	environments := []string{environment}
	if environment == "" {
		var err error
		environments, err = c.ListEnvironments(ctx)
		if err != nil {
			return nil, err
		}
	}

	var dates []models.DateFolder
	for _, env := range environments {
		prefix := ""
		if env != "" {
			prefix = env + "/"
		}
		out, err := c.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:    aws.String(c.bucket),
			Prefix:    aws.String(prefix),
			Delimiter: aws.String("/"),
		})
		if err != nil {
			return nil, fmt.Errorf("listing dates for %q: %w", env, err)
		}

		for _, p := range out.CommonPrefixes {
			folder := strings.TrimSuffix(aws.ToString(p.Prefix), "/")
			parts := strings.Split(folder, "/")
			dateStr := parts[len(parts)-1]
			if !isDateString(dateStr) {
				continue
			}
			folderEnv := env
			if folderEnv == "" {
				folderEnv = "root"
			}
			dates = append(dates, models.DateFolder{
				Date:        dateStr,
				Environment: folderEnv,
				Prefix:      folder + "/",
			})
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Date > dates[j].Date })
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

// ListFiles returns log files for one date, most recent first, plus the
// continuation token for the next page.
func (c *Client) ListFiles(ctx context.Context, date, environment string, limit int, cursor string) ([]models.LogFile, string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		Prefix:  aws.String(fmt.Sprintf("%s/%s/", environment, date)),
		MaxKeys: aws.Int32(int32(limit)),
	}
	if cursor != "" {
		input.ContinuationToken = aws.String(cursor)
	}

	out, err := c.s3.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("listing files for %s/%s: %w", environment, date, err)
	}

	files := make([]models.LogFile, 0, len(out.Contents))
	for _, obj := range out.Contents {
		files = append(files, models.LogFileFromKey(
			aws.ToString(obj.Key),
			aws.ToInt64(obj.Size),
			aws.ToTime(obj.LastModified),
		))
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].LastModified.After(files[j].LastModified)
	})

	return files, aws.ToString(out.NextContinuationToken), nil
}

// GetFileContent downloads one object and returns its text content,
// gunzipping when the key carries a .gz suffix. Transient fetch failures
// are retried before the error is surfaced.
func (c *Client) GetFileContent(ctx context.Context, key string) (string, error) {
	var body []byte
	err := retry.Do(
		func() error {
			out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return err
			}
			defer out.Body.Close()
			body, err = io.ReadAll(out.Body)
			return err
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", key, err)
	}

	if strings.HasSuffix(key, ".gz") {
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("decompressing %s: %w", key, err)
		}
		defer gz.Close()
		decompressed, err := io.ReadAll(gz)
		if err != nil {
			return "", fmt.Errorf("decompressing %s: %w", key, err)
		}
		c.log.WithFields(logrus.Fields{"key": key, "bytes": len(decompressed)}).Debug("fetched log file")
		return string(decompressed), nil
	}

	c.log.WithFields(logrus.Fields{"key": key, "bytes": len(body)}).Debug("fetched log file")
	return string(body), nil
}

// GetLatestFiles returns up to count files from the most recent date folder.
func (c *Client) GetLatestFiles(ctx context.Context, environment string, count int) ([]models.LogFile, error) {
	dates, err := c.ListDates(ctx, environment, 1)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}

	files, _, err := c.ListFiles(ctx, dates[0].Date, environment, count, "")
	return files, err
}

// isDateString reports whether s looks like a YYYYMMDD folder name.
func isDateString(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Ensure Client implements Store.
var _ Store = (*Client)(nil)
