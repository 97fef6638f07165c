// Package rest is a thin, fluent REST client over net/http.
//
// It builds requests, sends them through an injectable transport and
// materializes the response as text, bytes, a live stream or a deserialized
// value, returned together with the status code.
//
// Basic Usage:
//
//	client := rest.MustNew(
//	    rest.WithBaseURL("https://api.example.com/"),
//	    rest.WithTimeout(10*time.Second),
//	    rest.WithDefaultHeader("Authorization", "Bearer token"),
//	)
//
//	text, status, err := client.Get(ctx, "games/1", nil)
//
//	game, status, err := rest.Get[Game](ctx, client, "games/1", nil)
//
//	created, status, err := rest.Post[Game](ctx, client, "games", Game{Title: "game test"})
//
// Bodies:
//
// A string body is sent verbatim and an empty string sends no content.
// []byte and io.Reader bodies are sent as raw bytes, url.Values as a form.
// Any other value is serialized with the client's Serializer (JSON unless
// WithSerializer says otherwise) and sent with the configured media type
// and charset.
//
// Results:
//
// Exchange takes an explicit Target (AsText, AsBytes, AsStream or Into).
// SendAs and the generic verb functions pick the target from T: string,
// []byte and io.ReadCloser map to text, bytes and stream, anything else is
// deserialized. Empty bodies produce the zero value, never an error.
//
// Errors:
//
// Every failure is one of *ArgumentError, *TransportError,
// *SerializationError or *CancellationError; use errors.As to tell them
// apart. Nothing is retried.
//
// Concurrency:
//
// A Client may be used by many goroutines at once, provided its setters are
// not called while requests are in flight. All send methods block; Async
// runs any of them on a separate goroutine.
package rest
