// Package digest implements one round of HTTP Digest authentication with
// MD5: parsing a WWW-Authenticate challenge, computing the response hash and
// rendering the Authorization header.
//
// The client side is single-shot. The nonce count is always "1" and the
// client nonce is empty, so a response is computed per challenge and never
// reused across calls.
package digest
