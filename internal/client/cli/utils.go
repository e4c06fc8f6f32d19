package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/expensesheets/internal/common"
)

// describeError turns a command failure into the line shown to the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrNoSession):
		return "You are not signed in. Use 'login' or 'signup'."
	case errors.Is(err, common.ErrNoProfile):
		return "Your account is not linked to an organization yet. Use 'onboard'."
	case errors.Is(err, common.ErrUnauthorized):
		return "Not authorized: " + err.Error()
	case errors.Is(err, common.ErrUnavailable):
		return "The service is unreachable, try again later."
	case errors.Is(err, common.ErrNoSheetSelected):
		return "Open a sheet first with 'open <id>'."
	default:
		return err.Error()
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", common.ErrValidation, arg)
	}
	return id, nil
}

func parseOptionalID(arg string) (int64, error) {
	if arg == "" {
		return 0, nil
	}
	return parseID(arg)
}
