package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/audit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/sanitize"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

// Verifier checks raw keys against stored digests.
type Verifier interface {
	Verify(rawKey, digest string) bool
	VerifyDecoy(rawKey string) bool
}

// Limiter decides whether an address has used up its request budget.
type Limiter interface {
	IsRateLimited(ctx context.Context, ipAddress string) (bool, error)
}

// Observer receives one observation per finished publish attempt.
type Observer interface {
	ObservePublish(reason string, status int, d time.Duration)
	ObserveAccessLogFailure()
}

// Request is one publish attempt as seen by the transport.
type Request struct {
	Payload      Payload
	RemoteAddr   string
	ForwardedFor string
}

// Outcome describes how a publish attempt ended.
type Outcome struct {
	RequestID string
	Reason    Reason
	Stage     Stage
	Topic     string
	MessageID int64
	ClientIP  string
	Duration  time.Duration

	// Err is the storage or limiter error behind ReasonInternalError.
	Err error
	// AccessLogErr is set when the message was stored but its access log
	// entry could not be written. It never changes Reason.
	AccessLogErr error
}

// Accepted reports whether the message was stored.
func (o Outcome) Accepted() bool {
	return o.Reason == ReasonAccepted
}

// Pipeline runs webhook publish attempts against the stores.
type Pipeline struct {
	topics     store.TopicsStore
	messages   store.MessagesStore
	accessLogs store.AccessLogStore
	verifier   Verifier
	limiter    Limiter

	trusted  func(ip string) bool
	logger   *zap.Logger
	observer Observer
	audit    func(audit.Event)
	now      func() time.Time
	newID    func() string
}

// Option configures optional Pipeline collaborators.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithTrustedProxies restricts which peers may supply X-Forwarded-For.
func WithTrustedProxies(trusted func(ip string) bool) Option {
	return func(p *Pipeline) { p.trusted = trusted }
}

// WithObserver sets the metrics sink.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// WithAuditor replaces audit.Log as the audit sink.
func WithAuditor(fn func(audit.Event)) Option {
	return func(p *Pipeline) { p.audit = fn }
}

// WithClock sets the time source used for durations.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRequestIDs sets the request id generator.
func WithRequestIDs(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// New creates a Pipeline.
func New(
	topics store.TopicsStore,
	messages store.MessagesStore,
	accessLogs store.AccessLogStore,
	verifier Verifier,
	limiter Limiter,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		topics:     topics,
		messages:   messages,
		accessLogs: accessLogs,
		verifier:   verifier,
		limiter:    limiter,
		logger:     zap.NewNop(),
		audit:      audit.Log,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish validates, authenticates, rate-limits and stores one message.
// It never returns an error: every failure is a Reason on the Outcome.
func (p *Pipeline) Publish(ctx context.Context, req Request) (out Outcome) {
	start := p.now()
	out = Outcome{
		RequestID: p.newID(),
		Stage:     StageReceived,
		ClientIP:  ClientAddress(req.RemoteAddr, req.ForwardedFor, p.trusted),
	}
	defer func() {
		out.Duration = p.now().Sub(start)
		p.finish(out)
	}()

	if err := req.Payload.Validate(); err != nil {
		out.Topic = sanitize.Text(req.Payload.Topic)
		out.Reason = ReasonMissingFields
		return out
	}
	out.Stage = StageValidated

	topicName := sanitize.Text(req.Payload.Topic)
	title := sanitize.Text(req.Payload.Title)
	body := sanitize.Text(req.Payload.Message)
	out.Topic = topicName

	topic, err := p.topics.GetTopicByName(ctx, topicName)
	if err != nil {
		if errors.Is(err, store.ErrTopicNotFound) {
			p.verifier.VerifyDecoy(req.Payload.Key)
			out.Reason = ReasonUnknownTopic
			return out
		}
		return internal(out, err)
	}
	out.Stage = StageTopicResolved

	if !topic.HasKey() {
		out.Reason = ReasonTopicMisconfigured
		return out
	}
	if !p.verifier.Verify(req.Payload.Key, topic.KeyHash) {
		out.Reason = ReasonInvalidKey
		return out
	}
	out.Stage = StageAuthenticated

	limited, err := p.limiter.IsRateLimited(ctx, out.ClientIP)
	if err != nil {
		return internal(out, err)
	}
	if limited {
		out.Reason = ReasonRateLimited
		return out
	}
	out.Stage = StageRateChecked

	msg, err := p.messages.AddMessage(ctx, topic.ID, title, body)
	if err != nil {
		return internal(out, err)
	}
	out.Stage = StagePersisted
	out.MessageID = msg.ID

	// The message is committed. From here on the reason stays accepted and
	// the stage shows whether the access log entry made it.
	out.Reason = ReasonAccepted
	if err := p.recordAccessBestEffort(ctx, msg.ID, out.ClientIP); err != nil {
		out.AccessLogErr = err
		return out
	}
	out.Stage = StageLogged

	out.Stage = StageAccepted
	return out
}

// Reject records an attempt that failed before Publish could run, such as a
// body that did not decode. It logs, audits and measures it like any other
// outcome.
func (p *Pipeline) Reject(req Request, reason Reason) Outcome {
	start := p.now()
	out := Outcome{
		RequestID: p.newID(),
		Reason:    reason,
		Stage:     StageReceived,
		ClientIP:  ClientAddress(req.RemoteAddr, req.ForwardedFor, p.trusted),
	}
	out.Duration = p.now().Sub(start)
	p.finish(out)
	return out
}

// recordAccessBestEffort writes the access log entry for an accepted
// message. The message is already committed, so a failure here is only
// logged and returned for the Outcome.
func (p *Pipeline) recordAccessBestEffort(ctx context.Context, messageID int64, ip string) error {
	_, err := p.accessLogs.RecordAccessLog(ctx, &messageID, ip)
	if err != nil {
		p.logger.Error("failed to record access log",
			zap.Int64("message_id", messageID),
			zap.String("client_ip", ip),
			zap.Error(err),
		)
		if p.observer != nil {
			p.observer.ObserveAccessLogFailure()
		}
	}
	return err
}

func internal(out Outcome, err error) Outcome {
	out.Reason = ReasonInternalError
	out.Err = err
	return out
}

// finish logs, audits and measures a completed attempt. The key never
// reaches any of them.
func (p *Pipeline) finish(out Outcome) {
	fields := []zap.Field{
		zap.String("request_id", out.RequestID),
		zap.String("topic", out.Topic),
		zap.String("client_ip", out.ClientIP),
		zap.Stringer("reason", out.Reason),
		zap.String("stage", string(out.Stage)),
		zap.Duration("duration", out.Duration),
	}

	switch {
	case out.Accepted():
		p.logger.Info("message received", append(fields,
			zap.Int64("message_id", out.MessageID),
			zap.Bool("access_logged", out.Stage.Reached(StageLogged)),
		)...)
	case out.Reason == ReasonInternalError:
		p.logger.Error("publish failed", append(fields, zap.Error(out.Err))...)
	case out.Reason.ServerFault():
		p.logger.Error("publish rejected", fields...)
	default:
		p.logger.Warn("publish rejected", fields...)
	}

	if p.audit != nil {
		p.audit(audit.PublishEvent{
			RequestID:   out.RequestID,
			Topic:       out.Topic,
			ClientIP:    out.ClientIP,
			StoredID:    out.MessageID,
			Reason:      out.Reason.String(),
			Success:     out.Accepted(),
			ServerFault: out.Reason.ServerFault(),
		})
	}

	if p.observer != nil {
		p.observer.ObservePublish(out.Reason.String(), out.Reason.Status(), out.Duration)
	}
}
