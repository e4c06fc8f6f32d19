package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{common.ErrNoSession, "You are not signed in. Use 'login' or 'signup'."},
		{fmt.Errorf("load: %w", common.ErrNoProfile), "Your account is not linked to an organization yet. Use 'onboard'."},
		{common.ErrUnavailable, "The service is unreachable, try again later."},
		{common.ErrNoSheetSelected, "Open a sheet first with 'open <id>'."},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeError(tt.err))
	}

	assert.Contains(t, describeError(common.ErrUnauthorized), "Not authorized")
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "4x"} {
		_, err := parseID(bad)
		assert.ErrorIs(t, err, common.ErrValidation, bad)
	}

	id, err = parseOptionalID("")
	require.NoError(t, err)
	assert.Zero(t, id)
}
