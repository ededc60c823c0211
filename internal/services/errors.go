package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy for the watch pipeline. Each failure mode maps to a
// containment scope: credential errors skip the user for the tick,
// transient remote errors skip the affected file or folder, composite
// errors skip the file without automatic retry, and webhook errors
// preserve all artifacts so the next tick rediscovers the batch.
var (
	ErrCredential    = errors.New("credential error")
	ErrTransient     = errors.New("transient remote error")
	ErrComposite     = errors.New("composite error")
	ErrWebhook       = errors.New("webhook error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
