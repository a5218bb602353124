package xmlrpc

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/xmlrpc/codec"
	"github.com/kbukum/xmlrpc/digest"
	"github.com/kbukum/xmlrpc/httpclient"
	"github.com/kbukum/xmlrpc/logger"
	"github.com/kbukum/xmlrpc/observability"
)

var (
	errNoDigestCredentials = errors.New("server requires authentication and no digest credentials are configured")
	errNoChallenge         = errors.New("401 response without WWW-Authenticate header")
)

type state int

const (
	stateIdle state = iota
	stateSent
	stateChallenged
	stateRetried
	stateDone
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateSent:
		return "sent"
	case stateChallenged:
		return "challenged"
	case stateRetried:
		return "retried"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// call is the state of one MethodCall.
type call struct {
	client *Client
	method string
	params []any
	target *target
	state  state
	span   trace.Span
	log    *logger.Logger

	status  int
	retried bool
}

func (k *call) transition(next state) {
	k.span.AddEvent(next.String(), trace.WithAttributes(attribute.Int(observability.AttrHTTPStatus, k.status)))
	k.log.Debug("call state changed", logger.Fields(
		"from", k.state.String(),
		logger.FieldState, next.String(),
		logger.FieldStatus, k.status,
	))
	k.state = next
}

func (k *call) run(ctx context.Context) (any, error) {
	body, err := k.client.codec.EncodeCall(k.method, k.params)
	if err != nil {
		return nil, err
	}
	k.target = k.client.base.clone()
	k.target.header.Set("Content-Length", strconv.Itoa(len(body)))

	k.transition(stateSent)
	resp, err := k.send(ctx, body)
	if err != nil {
		k.transition(stateDone)
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		k.transition(stateDone)
		return nil, notFound()
	case http.StatusUnauthorized:
		k.transition(stateChallenged)
		if err := k.authorize(resp); err != nil {
			k.transition(stateDone)
			return nil, err
		}
		k.retried = true
		k.client.metrics.RecordRetry(ctx, k.method)
		k.transition(stateRetried)
		resp, err = k.send(ctx, body)
		if err != nil {
			k.transition(stateDone)
			return nil, err
		}
		if resp.StatusCode == http.StatusNotFound {
			k.transition(stateDone)
			return nil, notFound()
		}
	}

	k.transition(stateDone)
	return k.client.codec.DecodeResponse(bytes.NewReader(resp.Body))
}

func (k *call) send(ctx context.Context, body []byte) (*httpclient.Response, error) {
	resp, err := k.client.transport.Do(ctx, &httpclient.Request{
		Method: http.MethodPost,
		Host:   k.target.addr(),
		Path:   k.target.path,
		Header: k.target.header,
		Body:   body,
	})
	if err != nil {
		return nil, transportError(err)
	}
	k.status = resp.StatusCode
	return resp, nil
}

// authorize answers the challenge in resp by setting a Digest Authorization
// header on the call's own target.
func (k *call) authorize(resp *httpclient.Response) error {
	if k.target.digest == nil {
		return authChallengeError(errNoDigestCredentials)
	}
	header := pickChallenge(resp.Header.Values("WWW-Authenticate"))
	if header == "" {
		return authChallengeError(errNoChallenge)
	}
	challenge, err := digest.ParseChallenge(header)
	if err != nil {
		return authChallengeError(err)
	}
	cred := digest.Credentials{Username: k.target.digest.User, Password: k.target.digest.Pass}
	answer, err := digest.Respond(challenge, cred, http.MethodPost, k.target.path)
	if err != nil {
		return authChallengeError(err)
	}
	k.log.Debug("answering digest challenge", logger.Fields("realm", challenge.Realm))
	k.target.header.Set("Authorization", answer.String())
	return nil
}

// pickChallenge returns the first Digest challenge, or the first value when
// none is Digest so the parser can report it.
func pickChallenge(values []string) string {
	for _, v := range values {
		if digest.HasScheme(v) {
			return v
		}
	}
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

func outcomeOf(err error) string {
	var fault *codec.Fault
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.As(err, &fault):
		return observability.OutcomeFault
	case IsNotFound(err):
		return observability.OutcomeNotFound
	case IsTransport(err):
		return observability.OutcomeTransport
	case IsAuthChallenge(err):
		return observability.OutcomeAuth
	default:
		return observability.OutcomeError
	}
}
