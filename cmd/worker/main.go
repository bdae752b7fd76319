package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"application-tracker/internal/bootstrap"
	"application-tracker/internal/notify"
	"application-tracker/internal/shared/config"
	"application-tracker/internal/shared/metrics"
	"application-tracker/internal/shared/telemetry"
	"application-tracker/internal/workerproc"
)

const (
	defaultSQSRegion          = "us-east-1"
	defaultVisibilitySeconds  = 120
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
)

func main() {
	cfg := config.Load()

	queueURL := strings.TrimSpace(cfg.NotifyQueueURL)
	if queueURL == "" {
		log.Fatal("NOTIFY_QUEUE_URL is required")
	}
	region := cfg.AWSRegion
	if region == "" {
		region = defaultSQSRegion
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	visibilitySeconds := envInt("WORKER_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)
	concurrency := envInt("WORKER_CONCURRENCY", defaultWorkerConcurrency)
	shutdownTimeout := time.Duration(envInt("WORKER_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	deliverer := bootstrap.DeliveryNotifier(cfg)
	timeout := cfg.NotifyTimeout

	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

	log.Printf("worker started queue=%s concurrency=%d visibility=%ds", queueURL, concurrency, visibilitySeconds)

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(visibilitySeconds),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			log.Printf("receive message: %v", err)
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			metrics.IncWorkerJob("received")
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				// In-flight deliveries outlive the poll context so shutdown can drain them.
				jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
				defer cancel()
				handleMessage(jobCtx, sqsClient, queueURL, deliverer, m)
			}(msg)
		}
	}

	log.Printf("shutdown requested, waiting up to %s for in-flight jobs", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with in-flight jobs")
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// handleMessage delivers one queued notification. Every message is deleted
// after a single attempt so an email is never sent twice; failures are only
// logged and counted.
func handleMessage(ctx context.Context, client sqsAPI, queueURL string, deliverer notify.Notifier, msg sqstypes.Message) {
	decoded, meta, err := workerproc.ParseMessage(aws.ToString(msg.Body))
	if err != nil {
		fields := baseFields(msg, "", "")
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		event := "worker.notify.decode_failed"
		var emptyErr workerproc.ErrEmptyBody
		var invalidErr workerproc.ErrInvalidMessage
		switch {
		case errors.As(err, &emptyErr):
			event = "worker.notify.empty_body"
		case errors.As(err, &invalidErr):
			event = "worker.notify.invalid"
			fields["reason"] = invalidErr.Reason
			if invalidErr.RequestID != "" {
				fields["request_id"] = invalidErr.RequestID
			}
		default:
			fields["error"] = err.Error()
		}
		telemetry.Error(event, fields)
		if deleteMessage(ctx, client, queueURL, msg, decoded.Token, decoded.RequestID) {
			metrics.IncWorkerJob("dropped")
		}
		return
	}

	telemetry.Info("worker.notify.received", baseFields(msg, decoded.Token, decoded.RequestID))

	ctxWithParsed := workerproc.WithParsedMessage(ctx, decoded)
	if err := workerproc.HandleMessage(ctxWithParsed, deliverer, ""); err != nil {
		fields := baseFields(msg, decoded.Token, decoded.RequestID)
		fields["kind"] = decoded.Kind
		fields["error"] = err.Error()
		telemetry.Error("worker.notify.failed", fields)
		metrics.IncWorkerJob("failed")
		metrics.IncNotification(decoded.Kind, "failed")
		deleteMessage(ctx, client, queueURL, msg, decoded.Token, decoded.RequestID)
		return
	}

	if deleteMessage(ctx, client, queueURL, msg, decoded.Token, decoded.RequestID) {
		fields := baseFields(msg, decoded.Token, decoded.RequestID)
		fields["kind"] = decoded.Kind
		telemetry.Info("worker.notify.completed", fields)
		metrics.IncWorkerJob("completed")
		metrics.IncNotification(decoded.Kind, "sent")
	}
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message, token, requestID string) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg, token, requestID)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.notify.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg, token, requestID)
		fields["error"] = err.Error()
		telemetry.Error("worker.notify.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message, token, requestID string) map[string]any {
	fields := map[string]any{
		"token":          token,
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
	if strings.TrimSpace(requestID) != "" {
		fields["request_id"] = requestID
	}
	return fields
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
