// Package api exposes segmentation and speaker attribution over HTTP and MCP.
// Both transports decode into the same request types and call the same
// kit.Endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/hazyhaar/floorspeech/pkg/kit"
	"github.com/hazyhaar/floorspeech/pkg/match"
	"github.com/hazyhaar/floorspeech/pkg/metrics"
	"github.com/hazyhaar/floorspeech/pkg/pipeline"
	"github.com/hazyhaar/floorspeech/pkg/record"
	"github.com/hazyhaar/floorspeech/pkg/roster"
	"github.com/hazyhaar/floorspeech/pkg/store"
)

// maxDocuments bounds one segment or attribute call.
const maxDocuments = 100

// ErrInvalidRequest wraps decoding and validation failures.
var ErrInvalidRequest = errors.New("api: invalid request")

var validate = validator.New()

// Service bundles what the endpoints need.
type Service struct {
	Pipeline *pipeline.Pipeline
	Rosters  *roster.Registry
	Metrics  *metrics.Metrics // optional
	Logger   *slog.Logger     // optional
}

// Shared request/response types used by both HTTP and MCP transports.

type documentReq struct {
	Text      string `json:"text"`
	IssueDate string `json:"issue_date" validate:"required"`
	SourceURL string `json:"source_url"`
}

type documentsReq struct {
	Documents []documentReq `json:"documents" validate:"required,min=1,dive"`
}

type resolveReq struct {
	Session int    `validate:"gte=1"`
	Speaker string `validate:"required"`
}

type segmentResponse struct {
	Count    int             `json:"count"`
	Speeches []record.Speech `json:"speeches"`
}

type resolveResponse struct {
	Session int            `json:"session"`
	Speaker string         `json:"speaker"`
	Matched bool           `json:"matched"`
	Match   *match.Matched `json:"match,omitempty"`
}

type sessionsResponse struct {
	Sessions []roster.Info `json:"sessions"`
}

// endpoints holds the wrapped endpoints of a Service.
type endpoints struct {
	segment, attribute, resolve, sessions kit.Endpoint
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) endpoints() endpoints {
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(s.logger(), name), instrument(s.Metrics, name))(ep)
	}
	return endpoints{
		segment:   wrap("segment", segmentEndpoint(s.Pipeline)),
		attribute: wrap("attribute", attributeEndpoint(s.Pipeline)),
		resolve:   wrap("resolve_speaker", resolveSpeakerEndpoint(s.Pipeline)),
		sessions:  wrap("list_sessions", listSessionsEndpoint(s.Rosters)),
	}
}

func segmentEndpoint(p *pipeline.Pipeline) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		docs, err := toDocuments(request.(*documentsReq))
		if err != nil {
			return nil, err
		}
		speeches, err := p.Segment(ctx, docs)
		if err != nil {
			return nil, err
		}
		if speeches == nil {
			speeches = []record.Speech{}
		}
		return segmentResponse{Count: len(speeches), Speeches: speeches}, nil
	}
}

func attributeEndpoint(p *pipeline.Pipeline) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		docs, err := toDocuments(request.(*documentsReq))
		if err != nil {
			return nil, err
		}
		res, err := p.Run(ctx, docs)
		if err != nil {
			return nil, err
		}
		if res.Matched == nil {
			res.Matched = []match.Matched{}
		}
		return res, nil
	}
}

func resolveSpeakerEndpoint(p *pipeline.Pipeline) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		if err := validate.Struct(req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		m, err := p.ResolveSpeaker(ctx, req.Session, req.Speaker)
		if err != nil {
			return nil, err
		}
		return resolveResponse{Session: req.Session, Speaker: req.Speaker, Matched: m != nil, Match: m}, nil
	}
}

func listSessionsEndpoint(reg *roster.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return sessionsResponse{Sessions: reg.List()}, nil
	}
}

// toDocuments validates a batch and converts it to record documents. Blank
// text is accepted and segments to zero speeches.
func toDocuments(req *documentsReq) ([]record.Document, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if len(req.Documents) > maxDocuments {
		return nil, fmt.Errorf("%w: too many documents (max %d, got %d)", ErrInvalidRequest, maxDocuments, len(req.Documents))
	}
	docs := make([]record.Document, len(req.Documents))
	for i, d := range req.Documents {
		date, err := store.ParseDate(d.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %v", ErrInvalidRequest, i, err)
		}
		docs[i] = record.Document{Text: d.Text, IssueDate: date, SourceURL: d.SourceURL}
	}
	return docs, nil
}

// instrument counts endpoint calls by transport and outcome.
func instrument(m *metrics.Metrics, name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		if m == nil {
			return next
		}
		return func(ctx context.Context, request any) (any, error) {
			resp, err := next(ctx, request)
			m.Requests.WithLabelValues(name, kit.GetTransport(ctx), outcome(err)).Inc()
			return resp, err
		}
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isClientError(err):
		return "rejected"
	default:
		return "error"
	}
}

func isClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, match.ErrNoRoster)
}
