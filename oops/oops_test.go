package oops

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var SampleErrorValue = errors.New("some error occurred that you should handle")

type SampleErrorType struct {
	Message string
}

func (s SampleErrorType) Error() string {
	return s.Message
}

func init() {
	zerolog.ErrorStackMarshaler = ZerologStackMarshaler
}

func TestNew(t *testing.T) {
	t.Run("errors.Is", func(t *testing.T) {
		err := New(SampleErrorValue, "test error")
		assert.ErrorIs(t, err, SampleErrorValue)
	})
	t.Run("errors.As", func(t *testing.T) {
		err := New(SampleErrorType{Message: "some fancy error type has occurred"}, "test error")
		var sErr SampleErrorType
		assert.ErrorAs(t, err, &sErr)
	})
	t.Run("message", func(t *testing.T) {
		err := New(SampleErrorValue, "failed to load %s", "a.png")
		assert.Equal(t, "failed to load a.png: "+SampleErrorValue.Error(), err.Error())
		assert.Equal(t, "no wrapped error", New(nil, "no wrapped error").Error())
	})
	t.Run("stack", func(t *testing.T) {
		err := New(nil, "with stack").(*Error)
		if assert.NotEmpty(t, err.Stack) {
			assert.Contains(t, err.Stack[0].Function, "TestNew")
		}
	})
}
