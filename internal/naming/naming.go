package naming

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/avast/retry-go"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/justestif/go-listening-eras/internal/segmentation"
)

// Naming is the generated title and summary for one era.
type Naming struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// RetryPolicy controls how provider calls are retried.
type RetryPolicy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries three times with exponential backoff starting
// at one second, only on errors Retryable classifies as transient.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Retryable:   Retryable,
	}
}

// Namer names eras through a provider client. The client handle and retry
// policy are constructed once at process start and passed in; there is no
// process-wide singleton. A nil client disables the provider entirely.
type Namer struct {
	client  Client
	policy  RetryPolicy
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewNamer creates a Namer. Provider calls are rate limited to one per
// second across eras.
func NewNamer(client Client, policy RetryPolicy, logger *log.Logger) *Namer {
	if policy.Retryable == nil {
		policy.Retryable = Retryable
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Namer{
		client:  client,
		policy:  policy,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}
}

// Name generates a naming for the era. It never fails: provider errors and
// unparseable responses fall back to Fallback.
func (n *Namer) Name(ctx context.Context, era segmentation.Era) Naming {
	if n.client == nil {
		return Fallback(era)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return Fallback(era)
	}

	prompt := BuildPrompt(era)
	var text string
	err := retry.Do(
		func() error {
			var err error
			text, err = n.client.Complete(ctx, prompt)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(n.policy.MaxAttempts),
		retry.Delay(n.policy.BaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(n.policy.Retryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		n.logger.Warn("era naming failed, using fallback", "era", era.ID, "err", err)
		return Fallback(era)
	}

	naming, ok := ParseResponse(text)
	if !ok {
		n.logger.Warn("unparseable naming response, using fallback", "era", era.ID)
		return Fallback(era)
	}
	return naming
}

// jsonPattern extracts an embedded JSON object from surrounding prose or
// code fences.
var jsonPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseResponse extracts the title/summary JSON from a raw completion. It
// tries a direct decode first, then the first embedded JSON object.
func ParseResponse(text string) (Naming, bool) {
	var naming Naming
	if err := json.Unmarshal([]byte(text), &naming); err == nil && naming.Title != "" && naming.Summary != "" {
		return naming, true
	}
	if m := jsonPattern.FindString(text); m != "" {
		naming = Naming{}
		if err := json.Unmarshal([]byte(m), &naming); err == nil && naming.Title != "" && naming.Summary != "" {
			return naming, true
		}
	}
	return Naming{}, false
}

// Fallback produces a deterministic local naming.
func Fallback(era segmentation.Era) Naming {
	durationDays := int(era.EndDate.Sub(era.StartDate).Hours()/24) + 1
	topArtist := "various artists"
	if len(era.TopArtists) > 0 {
		topArtist = era.TopArtists[0].Artist
	}
	return Naming{
		Title:   fmt.Sprintf("Era %d: %s", era.ID, era.StartDate.Format("January 2006")),
		Summary: fmt.Sprintf("A %s period featuring %s and more.", formatDuration(durationDays), topArtist),
	}
}
