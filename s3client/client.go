package s3client

import (
	"bytes"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"petrovich.ru/petrovich/logger"
)

const jsonContentType = "application/json"

var clientLogger = logger.NewLogger("S3Client")
var awsLogger = logger.NewLogger("S3-SDK")

// Client keeps rule tables and batch results in a single bucket.
type Client struct {
	holder     *sessionHolder
	bucketName string
}

func New() (*Client, error) {
	env, err := ReadEnvironment()
	if err != nil {
		clientLogger.Err(err).Msg("Failed to get proper variables from environment")
		return nil, err
	}
	return NewWithConfig(env)
}

func NewWithConfig(env EnvironmentConfig) (*Client, error) {
	client := Client{
		holder:     newSessionHolder(),
		bucketName: env.BucketName,
	}
	if err := client.holder.acquire(env); err != nil {
		return nil, err
	}
	go client.holder.run(env)
	return &client, nil
}

// Upload stores a JSON document under key.
func (client *Client) Upload(data []byte, key string) (*s3manager.UploadOutput, error) {
	params := &s3manager.UploadInput{
		Bucket:      aws.String(client.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(jsonContentType),
	}
	sess, err := client.holder.get()
	if err != nil {
		return nil, err
	}
	output, err := client.upload(sess, params)
	if err == nil {
		return output, nil
	}
	if sess, err = client.holder.refresh(err); err != nil {
		return nil, err
	}
	// the body was consumed by the failed attempt
	params.Body = bytes.NewReader(data)
	return client.upload(sess, params)
}

func (client *Client) Download(key string) ([]byte, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(client.bucketName),
		Key:    aws.String(key),
	}
	sess, err := client.holder.get()
	if err != nil {
		return nil, err
	}
	res, err := client.download(sess, params)
	if err == nil {
		return res, nil
	}
	if sess, err = client.holder.refresh(err); err != nil {
		return nil, err
	}
	return client.download(sess, params)
}

func (client *Client) Close() {
	client.holder.closeCh <- struct{}{}
}

func (client *Client) upload(sess *session.Session, params *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
	keyLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	uploader := s3manager.NewUploader(sess.Copy(client.sdkConfig(*params.Key)))
	keyLogger.Debug().Msg("Uploading the file")
	output, err := uploader.Upload(params)
	if err != nil {
		keyLogger.Error().Err(err).Msg("Failed to upload file")
		return nil, err
	}
	return output, nil
}

func (client *Client) download(sess *session.Session, params *s3.GetObjectInput) ([]byte, error) {
	keyLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	downloader := s3manager.NewDownloader(sess.Copy(client.sdkConfig(*params.Key)))
	buf := aws.NewWriteAtBuffer([]byte{})

	keyLogger.Debug().Msg("Downloading file")
	size, err := downloader.Download(buf, params)
	if err != nil {
		keyLogger.Error().Err(err).Msg("Failed to download file")
		return nil, err
	}
	keyLogger.Debug().Msgf("Downloaded %v bytes", size)
	return buf.Bytes(), nil
}

func (client *Client) sdkConfig(key string) *aws.Config {
	l := awsLogger.With().
		Str("key", key).
		Str("bucket", client.bucketName).Logger()
	return &aws.Config{Logger: sdkLogger{logger: l}}
}

// ResultsKey is where the results of a batch are stored.
func ResultsKey(batchID string) string {
	return "batches/" + batchID + "/" + batchID + ".petrovich_results.json"
}
