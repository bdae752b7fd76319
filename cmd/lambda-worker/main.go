package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"application-tracker/internal/bootstrap"
	"application-tracker/internal/notify"
	"application-tracker/internal/shared/config"
	"application-tracker/internal/shared/metrics"
	"application-tracker/internal/shared/telemetry"
	"application-tracker/internal/workerproc"
)

var (
	initOnce  sync.Once
	deliverer notify.Notifier
)

func initDeliverer() {
	deliverer = bootstrap.DeliveryNotifier(config.Load())
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initDeliverer)
	return handleBatch(ctx, deliverer, event), nil
}

// handleBatch acknowledges every record after one delivery attempt so an
// email is never sent twice. Failures are logged and counted.
func handleBatch(ctx context.Context, n notify.Notifier, event events.SQSEvent) events.SQSEventResponse {
	for _, record := range event.Records {
		metrics.IncWorkerJob("received")
		err := workerproc.HandleMessage(ctx, n, record.Body)
		if err == nil {
			continue
		}
		fields := map[string]any{"sqs_message_id": record.MessageId, "error": err.Error()}
		var procErr workerproc.ErrProcess
		if errors.As(err, &procErr) {
			fields["token"] = procErr.Token
			fields["kind"] = procErr.Kind
			if procErr.RequestID != "" {
				fields["request_id"] = procErr.RequestID
			}
			telemetry.Error("worker.notify.failed", fields)
			metrics.IncWorkerJob("failed")
			metrics.IncNotification(procErr.Kind, "failed")
			continue
		}
		telemetry.Error("worker.notify.dropped", fields)
		metrics.IncWorkerJob("dropped")
	}
	return events.SQSEventResponse{BatchItemFailures: []events.SQSBatchItemFailure{}}
}

func main() {
	lambda.Start(handler)
}
