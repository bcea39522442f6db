// Package cfclient is the entry point for constructing a capi.Client.
//
// New normalizes the API endpoint, enforces the development-mode gate on
// SkipTLSVerify and wires the transport, session and recovery protocol.
// Vault and StateStore default to in-memory implementations, so a bare
// endpoint is enough for experiments:
//
//	cli, err := cfclient.NewWithEndpoint("api.example.com")
//	if err != nil { log.Fatal(err) }
//
//	if err := cli.Login(ctx, "user", "pass"); err != nil { log.Fatal(err) }
//
// Long-lived tools pass a keyring-backed vault and a file or NATS state
// store so that credentials and the organization selection survive restarts.
package cfclient
