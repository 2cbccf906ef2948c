package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessError_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		err      *BusinessError
		kind     error
		specific error
	}{
		{"fund", WrapFundNotPositive(2024), ErrValidation, ErrFundNotPositive},
		{"exists", WrapCalculationExists(2024), ErrConflict, ErrCalculationExists},
		{"distributed", WrapAlreadyDistributed("c1"), ErrConflict, ErrAlreadyDistributed},
		{"transition", WrapInvalidTransition("c1", "draft", "approved"), ErrConflict, ErrInvalidTransition},
		{"loan", WrapLoanNotFound("l1"), ErrNotFound, ErrLoanNotFound},
		{"no allocations", WrapNoAllocations("c1"), ErrValidation, ErrNoAllocations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
			assert.ErrorIs(t, wrapped, tt.specific)
			for _, other := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrPersistence} {
				if other != tt.kind {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	err := WrapDatabaseError("lock loan", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeDatabaseError, err.Code)
	assert.Contains(t, err.Error(), `"lock loan"`)
	assert.Contains(t, err.Error(), "deadlock detected")

	var be *BusinessError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &be))
	assert.Same(t, err, be)
}
