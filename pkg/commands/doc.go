// Package commands provides the "!command" router for the entropy terminal.
//
// Every submitted line passes through Router.Dispatch before anything is sent
// to the completion relay. Lines whose first token names a known command are
// answered locally; everything else comes back unhandled so the caller can
// forward the original text to the relay as a user message.
//
// # Key Types
//
//   - Kind: closed set of known commands plus KindUnrecognized
//   - Invocation: a parsed line (kind, name, arguments)
//   - State: session state the router reads and returns updated
//   - Result: the text to show, and optionally a panel to reveal
//
// # Usage
//
//	res, state := router.Dispatch(ctx, line, state)
//	if !res.Handled {
//	    // forward line to the relay
//	}
//
// The router never returns Go errors: wrong argument counts and collaborator
// failures are reported as plain text in Result.Text.
package commands
