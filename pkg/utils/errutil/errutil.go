package errutil

import (
	"context"
	"errors"

	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs the error with a message and returns it unchanged.
// Structured values attached via goerr are included in the log record.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	return err
}
