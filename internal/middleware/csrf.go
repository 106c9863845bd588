package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/aidemo/pkg/crypto"
	"github.com/charlesng35/aidemo/pkg/errors"
	"github.com/charlesng35/aidemo/pkg/logger"
	"github.com/charlesng35/aidemo/pkg/response"
)

const (
	CSRFCookieName = "aidemo_csrf"
	CSRFHeaderName = "X-CSRF-Token"
	// CSRFFormField is the hidden input HTML forms echo the token in.
	CSRFFormField = "csrf_token"

	csrfContextKey = "csrf_token"
	csrfTokenBytes = 32
	csrfCookieTTL  = 12 * 60 * 60
)

// CSRF protects the portfolio forms with a signed double-submit cookie. Safe requests
// get (or keep) a signed token cookie; POST, PUT, PATCH and DELETE must echo it in the
// csrf_token field or the X-CSRF-Token header. A token minted on this very request never
// validates, because the client could not have seen it yet.
func CSRF(signer *crypto.Signer) gin.HandlerFunc {
	log := logger.WithModule("csrf")

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, fresh, err := csrfCookie(c, signer)
		if err != nil {
			response.Abort(c, errors.ErrInternalServer.WithInternal(err))
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			c.Header(CSRFHeaderName, token)
		default:
			submitted := strings.TrimSpace(c.GetHeader(CSRFHeaderName))
			if submitted == "" {
				submitted = strings.TrimSpace(c.PostForm(CSRFFormField))
			}
			if fresh || !tokensMatch(token, submitted) {
				log.Warn("csrf token rejected",
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()),
					zap.Bool("fresh_cookie", fresh),
				)
				response.Abort(c, errors.ErrCSRFInvalid)
				return
			}
		}

		c.Set(csrfContextKey, token)
		c.Next()
	}
}

// CSRFToken returns the token of the current request for embedding in a form.
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}

// csrfCookie returns the request's valid token, minting and setting a new one when the
// cookie is absent or fails signature verification. The cookie is re-sent either way to
// slide its expiry.
func csrfCookie(c *gin.Context, signer *crypto.Signer) (token string, fresh bool, err error) {
	token, _ = c.Cookie(CSRFCookieName)
	if token == "" || (signer != nil && !verified(signer, token)) {
		if token, err = crypto.GenerateToken(csrfTokenBytes); err != nil {
			return "", false, err
		}
		if signer != nil {
			token = signer.Sign(token)
		}
		fresh = true
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfCookieTTL,
		Secure:   isHTTPS(c),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return token, fresh, nil
}

func verified(signer *crypto.Signer, token string) bool {
	_, ok := signer.Verify(token)
	return ok
}

func tokensMatch(expected, submitted string) bool {
	return expected != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}
