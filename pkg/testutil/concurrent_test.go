package testutil

import (
	"errors"
	"testing"

	dErrors "folio/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
)

func TestRunConcurrentCategorizesOutcomes(t *testing.T) {
	result := RunConcurrent(9, func(idx int) error {
		switch idx % 3 {
		case 0:
			return nil
		case 1:
			return dErrors.New(dErrors.CodeRateLimited, "slow down")
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(3), result.Successes)
	assert.Equal(t, int32(3), result.RateLimited)
	assert.Equal(t, int32(3), result.Errors)
	assert.Equal(t, int32(9), result.Total())
}
