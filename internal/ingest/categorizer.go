package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cinememories/cinememories/internal/events"
	"github.com/cinememories/cinememories/internal/gateway"
	"github.com/cinememories/cinememories/internal/models"
)

// DefaultDelay spaces consecutive categorization requests
const DefaultDelay = time.Second

// Classifier labels one image
type Classifier interface {
	Categorize(ctx context.Context, imageRef string) gateway.Result[models.Category]
}

// Photos is the part of the store a batch touches
type Photos interface {
	Get(id string) (models.Photo, bool)
	SetCategory(id string, category models.Category) (models.Photo, bool)
	Save(ctx context.Context) error
}

// Item is the outcome for one photo of a batch
type Item struct {
	PhotoID  string          `json:"photoId"`
	Name     string          `json:"name,omitempty"`
	Category models.Category `json:"category,omitempty"`
	Outcome  gateway.Outcome `json:"outcome,omitempty"`
	Applied  bool            `json:"applied"`
	Error    string          `json:"error,omitempty"`
}

// Report summarises a batch
type Report struct {
	Items    []Item        `json:"items"`
	Duration time.Duration `json:"duration"`
	Canceled bool          `json:"canceled,omitempty"`
}

// Succeeded counts items whose label came from the model
func (r Report) Succeeded() int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == gateway.Succeeded {
			n++
		}
	}
	return n
}

// Option configures a Categorizer
type Option func(*Categorizer)

// WithDelay overrides the pause between requests
func WithDelay(d time.Duration) Option {
	return func(c *Categorizer) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithSleeper overrides how the pause is performed (useful for tests)
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Categorizer) {
		c.sleeper = sleeper
	}
}

// WithPublisher sets where photo updates are announced
func WithPublisher(p events.Publisher) Option {
	return func(c *Categorizer) {
		if p != nil {
			c.publisher = p
		}
	}
}

// Categorizer labels photos one request at a time
type Categorizer struct {
	classifier Classifier
	photos     Photos
	publisher  events.Publisher
	delay      time.Duration
	sleeper    func(time.Duration)

	// held for the whole batch so concurrent batches queue instead of interleaving
	running sync.Mutex
	wg      sync.WaitGroup
}

// New builds a Categorizer
func New(classifier Classifier, photos Photos, opts ...Option) *Categorizer {
	c := &Categorizer{
		classifier: classifier,
		photos:     photos,
		publisher:  events.Nop{},
		delay:      DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run categorizes ids in order. A photo that fails keeps its category and
// the batch moves on; a photo deleted before or during its request is
// skipped. Cancellation stops the batch between items.
func (c *Categorizer) Run(ctx context.Context, ids []string) Report {
	c.running.Lock()
	defer c.running.Unlock()

	start := time.Now()
	report := Report{Items: make([]Item, 0, len(ids))}
	requested := false

	for _, id := range ids {
		if ctx.Err() != nil {
			report.Canceled = true
			break
		}

		photo, ok := c.photos.Get(id)
		if !ok {
			report.Items = append(report.Items, Item{PhotoID: id, Error: "photo not found"})
			continue
		}

		if requested {
			if err := c.sleep(ctx, c.delay); err != nil {
				report.Canceled = true
				break
			}
		}
		requested = true

		result := c.classifier.Categorize(ctx, photo.URL)
		item := Item{PhotoID: id, Name: photo.Name, Category: result.Value, Outcome: result.Outcome, Error: result.Reason()}

		if result.OK() {
			if _, ok := c.photos.SetCategory(id, result.Value); ok {
				item.Applied = true
				c.publisher.Publish(events.PhotoUpdated, id)
			} else {
				slog.Debug("Photo deleted while being categorized", "photo_id", id)
			}
		} else {
			slog.Warn("Categorization fell back", "photo_id", id, "outcome", result.Outcome, "error", result.Err)
		}
		report.Items = append(report.Items, item)
	}

	if err := c.photos.Save(context.WithoutCancel(ctx)); err != nil {
		slog.Error("Failed to save session after categorization", "error", err)
	}

	report.Duration = time.Since(start)
	slog.Info("Categorization batch finished",
		"photos", len(ids),
		"succeeded", report.Succeeded(),
		"canceled", report.Canceled,
		"duration", report.Duration)
	return report
}

// Start runs a batch in the background
func (c *Categorizer) Start(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Run(ctx, ids)
	}()
}

// Wait blocks until every background batch has returned
func (c *Categorizer) Wait() {
	c.wg.Wait()
}

func (c *Categorizer) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("categorization delay interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
