package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/va6996/flightfinder/log"
)

const (
	originHint      = "origin (e.g., 'from France')"
	destinationHint = "destination (e.g., 'to South Africa')"
)

// MissingFieldsError lists the required query fields that could not be extracted
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	hints := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		switch f {
		case "origin":
			hints = append(hints, originHint)
		case "destination":
			hints = append(hints, destinationHint)
		default:
			hints = append(hints, f)
		}
	}
	return fmt.Sprintf("Missing details: Please specify %s.", strings.Join(hints, ", "))
}

// ValidateQuery checks that both origin and destination were found
func ValidateQuery(ctx context.Context, details QueryDetails) error {
	var missing []string
	if strings.TrimSpace(details.Origin) == "" {
		missing = append(missing, "origin")
	}
	if strings.TrimSpace(details.Destination) == "" {
		missing = append(missing, "destination")
	}

	if len(missing) > 0 {
		err := &MissingFieldsError{Fields: missing}
		log.Warnf(ctx, "ValidateQuery: %s", err)
		return err
	}

	log.Debugf(ctx, "ValidateQuery: origin=%q destination=%q", details.Origin, details.Destination)
	return nil
}
