package pdfmailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// Mock implementations for testing.

type mockStore struct {
	called int
	last   *Submission
	err    error
}

func (m *mockStore) Save(ctx context.Context, sub *Submission) error {
	m.called++
	m.last = sub
	return m.err
}

type mockRenderer struct {
	called    int
	inputHTML string
	output    []byte
	err       error
	closed    bool
}

func (m *mockRenderer) Render(ctx context.Context, htmlContent string) ([]byte, error) {
	m.called++
	m.inputHTML = htmlContent
	if m.err != nil {
		return nil, m.err
	}
	if m.output != nil {
		return m.output, nil
	}
	return []byte("%PDF-1.4 mock"), nil
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

type mockMailer struct {
	called int
	last   Message
	err    error
}

func (m *mockMailer) Send(ctx context.Context, msg Message) error {
	m.called++
	m.last = msg
	return m.err
}

type mockLoader struct {
	templates map[string]string
	err       error
}

func (m *mockLoader) LoadTemplate(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	tpl, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("no template %q", name)
	}
	return tpl, nil
}

// withClock injects a fixed clock for deterministic timestamps.
func withClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func testLoader() *mockLoader {
	return &mockLoader{templates: map[string]string{
		TemplatePDF:   `<p>{{firstName}} {{lastName}} {{#if customId}}ID {{customId}}{{/if}}</p>`,
		TemplateEmail: `<p>Thanks {{firstName}}, from {{brandName}}</p>`,
	}}
}

func newTestService(store *mockStore, renderer *mockRenderer, mailer *mockMailer) *Service {
	opts := []Option{
		WithRenderer(renderer),
		WithTemplateLoader(testLoader()),
		withClock(func() time.Time { return testNow }),
	}
	if store != nil {
		opts = append(opts, WithStore(store))
	}
	return New(mailer, opts...)
}

func TestServiceProcess(t *testing.T) {
	store := &mockStore{}
	renderer := &mockRenderer{output: []byte("%PDF-1.7 real")}
	mailer := &mockMailer{}
	svc := newTestService(store, renderer, mailer)

	sub, err := svc.Process(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if store.called != 1 {
		t.Errorf("store calls = %d, want 1", store.called)
	}
	if renderer.called != 1 {
		t.Errorf("renderer calls = %d, want 1", renderer.called)
	}
	if mailer.called != 1 {
		t.Errorf("mailer calls = %d, want 1", mailer.called)
	}

	if !strings.Contains(renderer.inputHTML, "Ana Li") {
		t.Errorf("rendered HTML missing submitter name: %q", renderer.inputHTML)
	}
	if strings.Contains(renderer.inputHTML, "{{") {
		t.Errorf("template syntax leaked into rendered HTML: %q", renderer.inputHTML)
	}

	msg := mailer.last
	if msg.To != "ana@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if msg.Subject != "Your Submission Confirmation - Ana Li" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Filename != "submission_Ana_Li.pdf" {
		t.Errorf("attachment filename = %q", att.Filename)
	}
	if att.ContentType != "application/pdf" {
		t.Errorf("attachment content type = %q", att.ContentType)
	}
	if string(att.Content) != "%PDF-1.7 real" {
		t.Errorf("attachment bytes = %q", att.Content)
	}

	if sub.ID == "" {
		t.Error("expected server-assigned ID")
	}
	if store.last != sub {
		t.Error("stored submission differs from returned submission")
	}
}

func TestServiceProcessValidationFailure(t *testing.T) {
	store := &mockStore{}
	renderer := &mockRenderer{}
	mailer := &mockMailer{}
	svc := newTestService(store, renderer, mailer)

	_, err := svc.Process(context.Background(), SubmissionInput{})
	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}

	// No side effect may occur on validation failure.
	if store.called != 0 || renderer.called != 0 || mailer.called != 0 {
		t.Errorf("collaborator calls = store %d, render %d, mail %d; want all 0",
			store.called, renderer.called, mailer.called)
	}
}

func TestServiceProcessStoreFailure(t *testing.T) {
	store := &mockStore{err: fmt.Errorf("%w: connection reset", ErrStoreWrite)}
	renderer := &mockRenderer{}
	mailer := &mockMailer{}
	svc := newTestService(store, renderer, mailer)

	_, err := svc.Process(context.Background(), validInput())
	if !errors.Is(err, ErrStoreWrite) {
		t.Fatalf("expected ErrStoreWrite, got %v", err)
	}

	if renderer.called != 0 || mailer.called != 0 {
		t.Errorf("render %d, mail %d after store failure; want 0, 0", renderer.called, mailer.called)
	}
}

func TestServiceProcessRenderFailure(t *testing.T) {
	renderer := &mockRenderer{err: fmt.Errorf("%w: page crashed", ErrPDFGeneration)}
	mailer := &mockMailer{}
	svc := newTestService(nil, renderer, mailer)

	_, err := svc.Process(context.Background(), validInput())
	if !errors.Is(err, ErrPDFGeneration) {
		t.Fatalf("expected ErrPDFGeneration, got %v", err)
	}

	if mailer.called != 0 {
		t.Errorf("mailer calls = %d after render failure, want 0", mailer.called)
	}
}

func TestServiceProcessMailFailure(t *testing.T) {
	renderer := &mockRenderer{}
	mailer := &mockMailer{err: fmt.Errorf("%w: auth rejected", ErrMailSend)}
	svc := newTestService(nil, renderer, mailer)

	_, err := svc.Process(context.Background(), validInput())
	if !errors.Is(err, ErrMailSend) {
		t.Fatalf("expected ErrMailSend, got %v", err)
	}
}

func TestServiceProcessWithoutStore(t *testing.T) {
	renderer := &mockRenderer{}
	mailer := &mockMailer{}
	svc := newTestService(nil, renderer, mailer)

	if _, err := svc.Process(context.Background(), validInput()); err != nil {
		t.Fatalf("Process() without store: %v", err)
	}

	if renderer.called != 1 || mailer.called != 1 {
		t.Errorf("render %d, mail %d; want 1, 1", renderer.called, mailer.called)
	}
}

func TestServiceProcessTemplateLoadFailure(t *testing.T) {
	renderer := &mockRenderer{}
	mailer := &mockMailer{}
	svc := New(mailer,
		WithRenderer(renderer),
		WithTemplateLoader(&mockLoader{err: errors.New("disk gone")}),
	)

	_, err := svc.Process(context.Background(), validInput())
	if !errors.Is(err, ErrTemplateLoad) {
		t.Fatalf("expected ErrTemplateLoad, got %v", err)
	}
	if renderer.called != 0 {
		t.Errorf("renderer calls = %d, want 0", renderer.called)
	}
}

func TestServiceProcessConditionalDropsForEmptyCustomID(t *testing.T) {
	renderer := &mockRenderer{}
	svc := newTestService(nil, renderer, &mockMailer{})

	if _, err := svc.Process(context.Background(), validInput()); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if strings.Contains(renderer.inputHTML, "ID ") {
		t.Errorf("customId block should be absent: %q", renderer.inputHTML)
	}
}

func TestServiceClose(t *testing.T) {
	renderer := &mockRenderer{}
	svc := newTestService(nil, renderer, &mockMailer{})

	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !renderer.closed {
		t.Error("renderer not closed")
	}
}

func TestServiceBrandNameDefault(t *testing.T) {
	renderer := &mockRenderer{}
	mailer := &mockMailer{}
	svc := New(mailer,
		WithRenderer(renderer),
		WithTemplateLoader(testLoader()),
	)

	if _, err := svc.Process(context.Background(), validInput()); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if !strings.Contains(mailer.last.HTMLBody, defaultBrandName) {
		t.Errorf("email body missing default brand name: %q", mailer.last.HTMLBody)
	}
}
