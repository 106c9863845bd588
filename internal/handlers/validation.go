package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/aidemo/pkg/errors"
	"github.com/charlesng35/aidemo/pkg/response"
	"github.com/charlesng35/aidemo/pkg/validator"
)

// bindAndValidate decodes a JSON body into dest and checks its rules, writing a 400 and
// returning false on failure.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}
	if err := validator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(validationMessage(err)))
		return false
	}
	return true
}

// bindForm decodes form fields into dest, lets normalize clean them up, then validates.
// The returned message is empty when the form is acceptable; forms re-render with it
// instead of answering JSON.
func bindForm[T any](c *gin.Context, dest *T, normalize func(*T)) string {
	if err := c.ShouldBind(dest); err != nil {
		return "invalid form submission"
	}
	if normalize != nil {
		normalize(dest)
	}
	if err := validator.ValidateStruct(dest); err != nil {
		return validationMessage(err)
	}
	return ""
}

func validationMessage(err error) string {
	var failures validator.ValidationErrors
	if errors.As(err, &failures) {
		return failures.Error()
	}
	return "invalid request payload"
}

// positiveQuery reads a positive integer query parameter, falling back on absent or
// malformed values.
func positiveQuery(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
