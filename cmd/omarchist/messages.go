package main

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/omarchist/omarchist/internal/application/errors"
)

// userMessage turns an error into text for the terminal. Classified errors
// get a plain-language explanation; anything else is shown as is.
func userMessage(err error) string {
	if err == nil {
		return ""
	}

	path := "The file"
	var storeErr *apperrors.StoreError
	if errors.As(err, &storeErr) && storeErr.Path != "" {
		path = storeErr.Path
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindCorrupted:
		return fmt.Sprintf("%s has an unexpected structure and was left untouched. Fix or remove it, then try again.", path)
	case apperrors.KindJSONParse:
		return fmt.Sprintf("%s is not valid JSON and was left untouched. Fix or remove it, then try again.", path)
	case apperrors.KindFileRead:
		return fmt.Sprintf("Unable to read %s. Please check file permissions.", path)
	case apperrors.KindFileWrite:
		return fmt.Sprintf("Unable to save changes to %s. Please check file permissions and try again.", path)
	case apperrors.KindValidation:
		return validationMessage(err)
	case apperrors.KindNotFound, apperrors.KindConflict:
		var profileErr *apperrors.ProfileError
		if errors.As(err, &profileErr) {
			return capitalize(profileErr.Error()) + "."
		}
		return err.Error()
	default:
		return err.Error()
	}
}

func validationMessage(err error) string {
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		return "Invalid input: " + err.Error()
	}
	if len(verr.Details) <= 1 {
		return fmt.Sprintf("Invalid input: %s: %s", verr.Field, verr.Message)
	}
	return fmt.Sprintf("Invalid input:\n  %s", strings.Join(verr.Details, "\n  "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
