package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/identity"
	paymentdomain "github.com/ninjapaylabs/ninjapay/internal/payment/domain"
	"github.com/ninjapaylabs/ninjapay/internal/plugins"
)

var ErrUnauthorized = errors.New("server: unauthorized")

func invalidRequestError(err error) error {
	return fmt.Errorf("%w: %v", paymentdomain.ErrValidation, err)
}

// AbortWithError converts a domain error into the uniform error envelope.
// Everything is caught here; nothing propagates to the transport layer.
func AbortWithError(c *gin.Context, err error) {
	status, code := classify(err)

	body := gin.H{"code": code}
	// Upstream detail is returned for diagnostics; other 5xx stay generic.
	if status == http.StatusInternalServerError && errors.Is(err, paymentdomain.ErrUpstream) {
		body["message"] = err.Error()
	} else if status != http.StatusInternalServerError {
		body["message"] = err.Error()
	} else {
		body["message"] = "internal error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, fundingdomain.ErrNoProvider):
		return http.StatusBadRequest, "no_provider"
	case errors.Is(err, fundingdomain.ErrIndexOutOfRange):
		return http.StatusBadRequest, "index_out_of_range"
	case errors.Is(err, fundingdomain.ErrMissingFields),
		errors.Is(err, paymentdomain.ErrValidation),
		errors.Is(err, plugins.ErrInvalidGitURL):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, paymentdomain.ErrUnsupportedProvider):
		return http.StatusBadRequest, "unsupported_provider"
	case errors.Is(err, identity.ErrRejected):
		return http.StatusBadRequest, "identity_rejected"
	case errors.Is(err, paymentdomain.ErrUpstream):
		return http.StatusInternalServerError, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
