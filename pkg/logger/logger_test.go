package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	InitLogger("debug")
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	InitLogger("chatty")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
