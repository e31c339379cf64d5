// Package assets provides the HTML templates consumed by the submission
// pipeline.
//
// Templates use {{key}} substitution tokens and {{#if key}}...{{/if}}
// conditional blocks. Two loaders are available:
//
//   - EmbeddedLoader serves the compiled-in defaults, keeping the binary
//     self-contained.
//   - FilesystemLoader serves {dir}/{name}.html from a configured directory,
//     for deployments that customize the documents without rebuilding.
//
// The pipeline resolves the names "pdf" (the rendered document body) and
// "email" (the confirmation email body).
package assets
