// Package pdfmailer turns contact-form submissions into PDF confirmation
// documents and delivers them by email.
//
// # Quick Start
//
// Create a service with a mailer, process submissions, and close when done:
//
//	mailer, err := pdfmailer.NewSMTPMailer(smtpCfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc := pdfmailer.New(mailer)
//	defer svc.Close()
//
//	sub, err := svc.Process(ctx, pdfmailer.SubmissionInput{
//	    FirstName: "Ana",
//	    LastName:  "Li",
//	    Email:     "ana@example.com",
//	    Phone:     "555-0100",
//	})
//
// # Processing Pipeline
//
// Each submission flows through these stages, strictly in order:
//
//  1. Validation and normalization (all field violations collected)
//  2. Optional persistence (when a store is configured)
//  3. Template population and PDF rendering via headless Chrome (go-rod)
//  4. Email dispatch with the PDF attached
//
// The first failing stage short-circuits the rest. An already-persisted
// submission is not rolled back when a later stage fails.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := pdfmailer.New(mailer,
//	    pdfmailer.WithTimeout(time.Minute),
//	    pdfmailer.WithStore(store),
//	    pdfmailer.WithBrandName("Acme Corp"),
//	)
//
// # Parallel Processing
//
// Each Service owns one browser instance. For concurrent request handling,
// use ServicePool to cap the number of live browsers:
//
//	pool := pdfmailer.NewServicePool(pdfmailer.ResolvePoolSize(0), newService)
//	defer pool.Close()
//	sub, err := pool.Process(ctx, input)
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first run. Set ROD_BROWSER_BIN to use a pre-installed
// binary (also disables the sandbox, as required in containers).
package pdfmailer
