// Package lsp is the editor's Language Server Protocol client.
//
// It talks to external language servers (gopls, rust-analyzer,
// typescript-language-server, pyright, ...) over JSON-RPC 2.0 framed on
// stdin/stdout, and gives the editor controller five high-level operations:
// completion, hover, go-to-definition, find-references, and document sync
// (open/change/save). Everything else — diagnostics, code actions, rename,
// symbols, formatting — rides on the same transport for servers that support
// the corresponding teacher-grade workflows, but the controller only needs
// the five above to satisfy the editor's keymap.
//
// # Per-server concurrency
//
// Each running server owns two long-lived goroutines: a reader decoding
// framed messages and resolving pending requests or dispatching
// notifications, and a monitor that waits on the process and reports its
// exit on ExitChannel. Writes happen synchronously on the calling goroutine
// under the transport's mutex. Restarting a crashed server is the
// Supervisor's job, used when the Manager is built WithSupervision.
// Requests are correlated through a pending-request table keyed by request
// id, each entry holding a one-shot channel the reader fills in and the
// caller receives from (or times out on).
//
// # Readiness
//
// A server is not ready until its initialize handshake completes. Before
// that point its requests and its document notifications (open/change/
// close/save) all fail with ErrServerNotReady; nothing is queued. The
// Manager starts a server and waits for the handshake before routing a
// file's first request or didOpen to it.
//
// # Timeouts
//
// Ordinary requests carry a 3 second watchdog. The initialize handshake gets
// 5 seconds, since server startup (indexing, workspace scanning) routinely
// outlasts a steady-state request.
//
// Quick start:
//
//	client := lsp.NewClient(lsp.WithServers(map[string]lsp.ServerConfig{
//		"go": {Command: "gopls", Args: []string{"serve"}},
//	}))
//	client.Start(ctx)
//	client.OpenDocument(ctx, path, content)
//	result, err := client.Complete(ctx, path, pos, prevWord)
package lsp
