package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/models"
	"github.com/Peeyush4/AWS-News-Conversational-Chat-Bot/internal/storage"
)

// jobAPI is the slice of the SageMaker API the runner needs.
type jobAPI interface {
	CreateProcessingJob(ctx context.Context, in *sagemaker.CreateProcessingJobInput, opts ...func(*sagemaker.Options)) (*sagemaker.CreateProcessingJobOutput, error)
	DescribeProcessingJob(ctx context.Context, in *sagemaker.DescribeProcessingJobInput, opts ...func(*sagemaker.Options)) (*sagemaker.DescribeProcessingJobOutput, error)
}

// summaryReader fetches the job's output object.
type summaryReader interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// BatchSettings describe the processing job shape and its artifact layout.
type BatchSettings struct {
	RoleARN      string
	ImageURI     string
	InputBucket  string
	OutputBucket string
	// ModelPrefix is the input-bucket prefix holding model/ and tokenizer/
	// artifact subdirectories.
	ModelPrefix  string
	EntryPoint   []string
	InstanceType string
	VolumeSizeGB int32
	PollInterval time.Duration
	PollTimeout  time.Duration
}

func (s *BatchSettings) applyDefaults() {
	if s.ModelPrefix == "" {
		s.ModelPrefix = "ML_model"
	}
	if len(s.EntryPoint) == 0 {
		s.EntryPoint = []string{"/opt/app/summarizer"}
	}
	if s.InstanceType == "" {
		s.InstanceType = "ml.m5.large"
	}
	if s.VolumeSizeGB == 0 {
		s.VolumeSizeGB = 10
	}
	if s.PollInterval <= 0 {
		s.PollInterval = 5 * time.Second
	}
	if s.PollTimeout <= 0 {
		s.PollTimeout = 10 * time.Minute
	}
}

// BatchRunner submits a summarization processing job per request and waits,
// bounded, for it to write the summary object.
type BatchRunner struct {
	jobs     jobAPI
	store    summaryReader
	settings BatchSettings
	log      *slog.Logger
	now      func() time.Time
}

// NewBatch builds a runner from the ambient AWS configuration plus a storage
// client for reading the job output.
func NewBatch(api jobAPI, store summaryReader, settings BatchSettings, logger *slog.Logger) *BatchRunner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	settings.applyDefaults()
	return &BatchRunner{
		jobs:     api,
		store:    store,
		settings: settings,
		log:      logger,
		now:      time.Now,
	}
}

func (r *BatchRunner) Answer(ctx context.Context, req Request) (string, error) {
	queryKey := req.QueryKey
	if queryKey == "" {
		queryKey = storage.LegacyQueryKey
	}
	summaryKey := req.SummaryKey
	if summaryKey == "" {
		summaryKey = storage.LegacySummaryKey
	}

	name := jobName(r.now(), req.RequestID)
	if err := r.submit(ctx, name, req, queryKey, summaryKey); err != nil {
		return "", err
	}
	r.log.Info("processing job submitted", slog.String("job", name))

	if err := r.wait(ctx, name); err != nil {
		return "", err
	}

	data, err := r.store.Get(ctx, r.settings.OutputBucket, summaryKey)
	if err != nil {
		return "", fmt.Errorf("%w: read summary: %v", ErrUnavailable, err)
	}

	var summary models.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return "", fmt.Errorf("%w: decode summary: %v", ErrUnavailable, err)
	}
	if summary.Summary == "" {
		return NoSummary, nil
	}
	return summary.Summary, nil
}

// jobName builds a processing-job name unique per request. SageMaker caps
// names at 63 characters, so only a fragment of the request ID is appended.
func jobName(ts time.Time, requestID string) string {
	name := fmt.Sprintf("summarization-job-%s", ts.UTC().Format("20060102150405"))
	if requestID == "" {
		return name
	}
	if len(requestID) > 8 {
		requestID = requestID[:8]
	}
	return name + "-" + requestID
}

func (r *BatchRunner) submit(ctx context.Context, name string, req Request, queryKey, summaryKey string) error {
	s := r.settings
	fileInput := func(name, uri, localPath string) smtypes.ProcessingInput {
		return smtypes.ProcessingInput{
			InputName: aws.String(name),
			S3Input: &smtypes.ProcessingS3Input{
				S3Uri:       aws.String(uri),
				LocalPath:   aws.String(localPath),
				S3DataType:  smtypes.ProcessingS3DataTypeS3Prefix,
				S3InputMode: smtypes.ProcessingS3InputModeFile,
			},
		}
	}

	_, err := r.jobs.CreateProcessingJob(ctx, &sagemaker.CreateProcessingJobInput{
		ProcessingJobName: aws.String(name),
		RoleArn:           aws.String(s.RoleARN),
		AppSpecification: &smtypes.AppSpecification{
			ImageUri:            aws.String(s.ImageURI),
			ContainerEntrypoint: s.EntryPoint,
		},
		// The container resolves this request's objects through these
		// variables; without them it would fall back to the fixed legacy keys.
		Environment: map[string]string{
			"INPUT_BUCKET":  s.InputBucket,
			"OUTPUT_BUCKET": s.OutputBucket,
			"QUERY_KEY":     queryKey,
			"SUMMARY_KEY":   summaryKey,
		},
		ProcessingResources: &smtypes.ProcessingResources{
			ClusterConfig: &smtypes.ProcessingClusterConfig{
				InstanceCount:  aws.Int32(1),
				InstanceType:   smtypes.ProcessingInstanceType(s.InstanceType),
				VolumeSizeInGB: aws.Int32(s.VolumeSizeGB),
			},
		},
		ProcessingInputs: []smtypes.ProcessingInput{
			fileInput("input-query",
				fmt.Sprintf("s3://%s/%s", s.InputBucket, queryKey),
				"/opt/ml/processing/data/input"),
			fileInput("news-info",
				fmt.Sprintf("s3://%s/%s", s.InputBucket, req.NewsKey),
				"/opt/ml/processing/data/news"),
			fileInput("model",
				fmt.Sprintf("s3://%s/%s/model/", s.InputBucket, s.ModelPrefix),
				"/opt/ml/processing/data/model"),
			fileInput("tokenizer",
				fmt.Sprintf("s3://%s/%s/tokenizer/", s.InputBucket, s.ModelPrefix),
				"/opt/ml/processing/data/tokenizer"),
		},
		ProcessingOutputConfig: &smtypes.ProcessingOutputConfig{
			Outputs: []smtypes.ProcessingOutput{
				{
					OutputName: aws.String("summary-output"),
					S3Output: &smtypes.ProcessingS3Output{
						S3Uri:        aws.String(fmt.Sprintf("s3://%s/output/", s.OutputBucket)),
						LocalPath:    aws.String("/opt/ml/processing/output"),
						S3UploadMode: smtypes.ProcessingS3UploadModeEndOfJob,
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create processing job: %v", ErrUnavailable, err)
	}
	return nil
}

// wait polls the job until a terminal state, backing off exponentially and
// giving up at the configured deadline.
func (r *BatchRunner) wait(ctx context.Context, name string) error {
	deadline := r.now().Add(r.settings.PollTimeout)
	interval := r.settings.PollInterval

	for {
		desc, err := r.jobs.DescribeProcessingJob(ctx, &sagemaker.DescribeProcessingJobInput{
			ProcessingJobName: aws.String(name),
		})
		if err != nil {
			return fmt.Errorf("%w: describe processing job: %v", ErrUnavailable, err)
		}

		switch desc.ProcessingJobStatus {
		case smtypes.ProcessingJobStatusCompleted:
			return nil
		case smtypes.ProcessingJobStatusFailed, smtypes.ProcessingJobStatusStopped:
			return fmt.Errorf("%w: job %s %s: %s",
				ErrUnavailable, name, desc.ProcessingJobStatus, aws.ToString(desc.FailureReason))
		}

		if r.now().After(deadline) {
			return fmt.Errorf("%w: job %s still %s after %s",
				ErrTimeout, name, desc.ProcessingJobStatus, r.settings.PollTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		interval *= 2
		if interval > 30*time.Second {
			interval = 30 * time.Second
		}
	}
}
