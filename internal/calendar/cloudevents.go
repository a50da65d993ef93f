package calendar

import (
	"context"
	"fmt"
	"net/http"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/protocol"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/google/uuid"
)

// CloudEvent types emitted toward the scheduling service.
const (
	EventPublished = "qms.calendar.event.published"
	EventUpdated   = "qms.calendar.event.updated"
	EventDeleted   = "qms.calendar.event.deleted"
)

const eventSource = "/documents"

// CloudEventsClient delivers reminder changes as structured CloudEvents over
// HTTP. The subject carries the source record id and the "topic" extension
// carries the relation.
type CloudEventsClient struct {
	client cloudevents.Client
}

var _ Client = (*CloudEventsClient)(nil)

// NewCloudEventsClient targets the scheduling service at endpoint.
func NewCloudEventsClient(endpoint string) (*CloudEventsClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("calendar endpoint must be provided")
	}
	c, err := cloudevents.NewClientHTTP(cloudevents.WithTarget(endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create CloudEvents client: %w", err)
	}
	return &CloudEventsClient{client: c}, nil
}

func (c *CloudEventsClient) Publish(ctx context.Context, topic string, ev Event) (string, error) {
	e, err := newEvent(EventPublished, topic, ev.SourceID, ev)
	if err != nil {
		return "", err
	}
	if err := checkResult(c.client.Send(ctx, e), false); err != nil {
		return "", err
	}
	return e.ID(), nil
}

func (c *CloudEventsClient) Update(ctx context.Context, topic, sourceID string, patch Patch) error {
	e, err := newEvent(EventUpdated, topic, sourceID, patch)
	if err != nil {
		return err
	}
	return checkResult(c.client.Send(ctx, e), false)
}

// Delete treats a 404 from the service as an already-deleted event.
func (c *CloudEventsClient) Delete(ctx context.Context, topic, sourceID string) error {
	e, err := newEvent(EventDeleted, topic, sourceID, nil)
	if err != nil {
		return err
	}
	return checkResult(c.client.Send(ctx, e), true)
}

func newEvent(eventType, topic, sourceID string, data any) (cloudevents.Event, error) {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetType(eventType)
	e.SetSource(eventSource)
	e.SetSubject(sourceID)
	e.SetExtension("topic", topic)
	if data != nil {
		if err := e.SetData(cloudevents.ApplicationJSON, data); err != nil {
			return e, fmt.Errorf("failed to encode calendar payload: %w", err)
		}
	}
	return e, nil
}

func checkResult(result protocol.Result, tolerateNotFound bool) error {
	if protocol.IsACK(result) {
		return nil
	}
	var httpResult *cehttp.Result
	if protocol.ResultAs(result, &httpResult) {
		if tolerateNotFound && httpResult.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("calendar service responded %d: %w", httpResult.StatusCode, result)
	}
	return fmt.Errorf("failed to deliver calendar event: %w", result)
}
