// Package client is a Go client for the daemon's control socket: a
// length-prefixed JSON protocol over a Unix domain socket, not an HTTP
// API, so there is no generated client here — just a thin wrapper
// matching the request/reply shapes in internal/handlers.
//
// # Basic usage
//
//	c, err := client.Dial("/run/user/1000/pueue-go/daemon.socket")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	reply, err := c.Add(handlers.AddRequest{Command: "echo hi", Path: "/tmp"})
//
// # Authentication
//
// If the daemon was started with a preshared secret configured, pass it
// to Dial so the client can satisfy the one-shot handshake on connect:
//
//	c, err := client.Dial(socketPath, client.WithSecret(secret))
//
// # Streaming logs
//
//	chunks, stop, err := c.StreamLog(handlers.StreamLogRequest{TaskID: 7})
//	defer stop()
//	for chunk := range chunks {
//	    os.Stdout.Write(chunk)
//	}
package client
