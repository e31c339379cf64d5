package pdfmailer

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-pdfmailer/internal/assets"
)

// Template names resolved through the TemplateLoader.
const (
	TemplatePDF   = "pdf"
	TemplateEmail = "email"
)

// defaultTimeout bounds a single PDF render.
const defaultTimeout = 30 * time.Second

// defaultBrandName is used when no brand name is configured.
const defaultBrandName = "Our Company"

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout   time.Duration
	brandName string
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the PDF render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pdfmailer: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithBrandName sets the brand name exposed to templates as {{brandName}}.
func WithBrandName(name string) Option {
	return func(s *Service) {
		s.cfg.brandName = name
	}
}

// WithStore enables persistence of accepted submissions. Without this option
// the persistence step is skipped entirely.
func WithStore(store SubmissionStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithTemplateLoader replaces the embedded default templates.
func WithTemplateLoader(loader TemplateLoader) Option {
	return func(s *Service) {
		s.loader = loader
	}
}

// WithRenderer replaces the default headless-Chrome renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

// Service runs the submission pipeline: validate, optionally persist, render
// the confirmation PDF, and email it to the submitter. Each Service owns at
// most one browser instance; use ServicePool for concurrent processing.
type Service struct {
	cfg      serviceConfig
	loader   TemplateLoader
	store    SubmissionStore
	renderer Renderer
	mailer   Mailer
	now      func() time.Time
}

// New creates a Service delivering mail through the given mailer.
// Use options to customize behavior (e.g., WithStore, WithTimeout).
func New(mailer Mailer, opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			timeout:   defaultTimeout,
			brandName: defaultBrandName,
		},
		loader: assets.NewEmbeddedLoader(),
		mailer: mailer,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create the renderer if not injected (e.g., by tests)
	if s.renderer == nil {
		s.renderer = newRodRenderer(s.cfg.timeout)
	}

	return s
}

// Process runs the full pipeline for one submission and returns the accepted
// record. A validation failure returns FieldErrors before any side effect;
// later failures return a wrapped sentinel error. A record persisted before
// a later failure is intentionally left in place.
func (s *Service) Process(ctx context.Context, in SubmissionInput) (*Submission, error) {
	sub, err := in.Validate(s.now())
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, sub); err != nil {
			return nil, err
		}
	}

	data := sub.templateData(s.cfg.brandName)

	pdfTpl, err := s.loader.LoadTemplate(TemplatePDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}

	renderCtx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()
	pdfBytes, err := s.renderer.Render(renderCtx, Populate(pdfTpl, data))
	if err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}

	emailTpl, err := s.loader.LoadTemplate(TemplateEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}

	msg := Message{
		To:       sub.Email,
		Subject:  fmt.Sprintf("Your Submission Confirmation - %s %s", sub.FirstName, sub.LastName),
		HTMLBody: Populate(emailTpl, data),
		Attachments: []Attachment{{
			Filename:    fmt.Sprintf("submission_%s_%s.pdf", sub.FirstName, sub.LastName),
			Content:     pdfBytes,
			ContentType: "application/pdf",
		}},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("sending confirmation: %w", err)
	}

	return sub, nil
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.renderer != nil {
		return s.renderer.Close()
	}
	return nil
}
