package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorDataForKnownErrors(t *testing.T) {
	data := ErrorDataFor(ErrNotGameMaster)
	assert.Equal(t, "not-game-master", data.Code)
	assert.Equal(t, ErrNotGameMaster.Msg, data.Message)

	// wrapped errors still resolve to their code
	wrapped := fmt.Errorf("handling start-game: %w", ErrRoundInProgress)
	assert.Equal(t, "round-in-progress", ErrorDataFor(wrapped).Code)
}

func TestErrorDataForUnknownErrorIsMasked(t *testing.T) {
	data := ErrorDataFor(errors.New("pq: connection reset"))
	assert.Equal(t, "internal-error", data.Code)
	assert.Equal(t, "internal error", data.Message)
}
