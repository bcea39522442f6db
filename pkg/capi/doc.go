// Package capi provides types, interfaces, and helpers for working with the
// Cloud Foundry v2 API from a session-based client.
//
// # Overview
//
// The capi package defines the typed v2 response schemas (Organization, App,
// Space, AppSummary, AppStats, Info), the Client interface and the
// collaborators a client needs: a CredentialVault for login credentials, a
// StateStore for the selected organization and an AuthNotifier that brings
// the user back to a login entry point. A concrete client is built by the
// cfclient package.
//
// Getting a client
//
//	cli, err := cfclient.New(&capi.Config{APIEndpoint: "https://api.example.com"})
//	if err != nil { log.Fatal(err) }
//
//	if err := cli.Login(ctx, "user", "pass"); err != nil { log.Fatal(err) }
//
//	orgs, err := cli.ListOrgs(ctx)
//	if err != nil { log.Fatal(err) }
//
// # Session recovery
//
// Every authenticated call checks the session first. An empty session (no
// token and no vaulted credentials) and a 401 response both start recovery:
// the client logs in again with the vaulted credentials and replays the call
// once. If that login fails, the session is reset, the AuthNotifier is told
// and the call returns a 401 APIError wrapping the AuthError. Any other
// status is returned as an APIError without recovery.
//
// # Asynchronous use
//
// Async runs any call in its own goroutine and delivers exactly one Result
// on the returned channel:
//
//	summary := capi.Async(ctx, func(ctx context.Context) (*capi.AppSummary, error) {
//	  return cli.AppSummary(ctx, guid)
//	})
//	s, err := capi.Await(ctx, summary)
//
// # Errors
//
// TransportError, AuthError, APIError and ParseError classify failures.
// Helpers such as StatusCode, IsNotFound, IsUnauthorized and IsForbidden
// make it easy to branch on common cases.
package capi
