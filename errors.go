package pdfmailer

import "errors"

// Sentinel errors for pipeline operations.
var (
	// Renderer errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Store errors.
	ErrStoreConnect = errors.New("failed to connect to submission store")
	ErrStoreWrite   = errors.New("failed to persist submission")

	// Mailer errors.
	ErrInvalidMailConfig = errors.New("invalid mail configuration")
	ErrMailSend          = errors.New("failed to send email")

	// Template errors.
	ErrTemplateLoad = errors.New("failed to load template")
)
