// Package pubsub owns the Google Cloud Pub/Sub connection shared by the API
// (rider location fan-out) and the outbox publisher (order events).
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/fooddash-backend/pkg/config"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopics          = errors.New("pubsub topic name is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig

	trackingOnce sync.Once
	tracking     *pubsub.Publisher
}

// NewClient connects to Pub/Sub and fails unless every configured topic and
// subscription already exists. Resources are never created here.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	raw, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{client: raw, projectID: projectID, cfg: cfg}
	if err := c.verify(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "project_id", projectID), "pubsub.ready")
	}
	return c, nil
}

// verify checks every configured resource and reports all that are missing.
func (c *Client) verify(ctx context.Context) error {
	topics := nonEmpty(c.cfg.OrdersTopic, c.cfg.TrackingTopic)
	if len(topics) == 0 {
		return errNoTopics
	}
	var errs error
	for _, name := range topics {
		errs = multierr.Append(errs, c.lookup(ctx, kindTopic, name))
	}
	for _, name := range nonEmpty(c.cfg.OrdersSubscription) {
		errs = multierr.Append(errs, c.lookup(ctx, kindSubscription, name))
	}
	return errs
}

func (c *Client) lookup(ctx context.Context, kind, name string) error {
	full := resourceName(c.projectID, kind, name)
	var err error
	switch kind {
	case kindTopic:
		_, err = c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: full})
	case kindSubscription:
		_, err = c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: full})
	default:
		return fmt.Errorf("unknown pubsub resource kind %q", kind)
	}
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", strings.TrimSuffix(kind, "s"), name)
	default:
		return fmt.Errorf("checking %s: %w", full, err)
	}
}

// Publisher returns a handle for a topic id or full resource name, or nil
// when the name is blank.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	full := topicResourceName(c.projectID, name)
	if full == "" {
		return nil
	}
	return c.client.Publisher(full)
}

// TrackingPublisher is the shared rider location publisher. Ordering is on
// because consumers expect a rider's points in sequence per order.
func (c *Client) TrackingPublisher() *pubsub.Publisher {
	if c == nil {
		return nil
	}
	c.trackingOnce.Do(func() {
		if c.tracking = c.Publisher(c.cfg.TrackingTopic); c.tracking != nil {
			c.tracking.EnableMessageOrdering = true
		}
	})
	return c.tracking
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	return c.verify(ctx)
}

// Close flushes the tracking publisher before closing the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.tracking != nil {
		c.tracking.Stop()
	}
	return c.client.Close()
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func topicResourceName(projectID, name string) string {
	return resourceName(projectID, kindTopic, name)
}

// resourceName expands a bare id to projects/<p>/<kind>/<id> and passes full
// resource names through unchanged.
func resourceName(projectID, kind, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+kind+"/") {
		return name
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ""
	}
	return "projects/" + projectID + "/" + kind + "/" + name
}
