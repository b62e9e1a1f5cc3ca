package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Content   string `validate:"required,notblank,maxrunes"`
	Direction string `validate:"swipe"`
}

func TestCustomValidators(t *testing.T) {
	v := New()

	t.Run("valid payload passes", func(t *testing.T) {
		assert.NoError(t, v.Struct(sample{Content: "Hello", Direction: "right"}))
	})

	t.Run("whitespace-only content is blank", func(t *testing.T) {
		err := v.Struct(sample{Content: "   ", Direction: "LEFT"})
		require.Error(t, err)
		assert.Equal(t, []string{"Message is required"}, FormatValidationErrors(err))
	})

	t.Run("rune limit counts characters not bytes", func(t *testing.T) {
		assert.NoError(t, v.Struct(sample{Content: strings.Repeat("é", MaxMessageRunes), Direction: "LEFT"}))

		err := v.Struct(sample{Content: strings.Repeat("a", MaxMessageRunes+1), Direction: "LEFT"})
		require.Error(t, err)
		assert.Contains(t, Summary(err), "at most 4000 characters")
	})

	t.Run("unknown swipe direction", func(t *testing.T) {
		err := v.Struct(sample{Content: "hi", Direction: "UP"})
		require.Error(t, err)
		assert.Equal(t, "Swipe direction must be LEFT or RIGHT", Summary(err))
	})
}
