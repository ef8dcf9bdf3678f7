package embed

import (
	"context"
	"errors"
	"fmt"
	"net"

	coherecore "github.com/cohere-ai/cohere-go/v2/core"
	goopenai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	httpx "github.com/quillback/quill/internal/http"
)

type Kind int

const (
	KindRateLimited Kind = iota
	KindServer
	KindInvalid
	KindAuth
)

func (k Kind) Transient() bool {
	return k == KindRateLimited || k == KindServer
}

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate-limited"
	case KindServer:
		return "server-error"
	case KindInvalid:
		return "invalid-request"
	case KindAuth:
		return "auth-failure"
	default:
		return "unknown"
	}
}

// Error wraps a provider failure with its retry class.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps an error returned by any provider SDK onto a retry
// class. Unrecognized errors are treated as transient server failures;
// embedding calls are idempotent so an extra attempt is always safe.
func classify(err error) Kind {
	var quillErr *Error
	if errors.As(err, &quillErr) {
		return quillErr.Kind
	}

	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) {
		return kindForStatus(statusErr.Code)
	}

	var openaiErr *goopenai.APIError
	if errors.As(err, &openaiErr) {
		return kindForStatus(openaiErr.HTTPStatusCode)
	}

	var cohereErr *coherecore.APIError
	if errors.As(err, &cohereErr) {
		return kindForStatus(cohereErr.StatusCode)
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return kindForStatus(genaiErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindServer
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindServer
	}

	return KindServer
}

func kindForStatus(code int) Kind {
	switch {
	case code == 429:
		return KindRateLimited
	case code == 401 || code == 403:
		return KindAuth
	case code >= 500:
		return KindServer
	default:
		return KindInvalid
	}
}
