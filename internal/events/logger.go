package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
)

// watermillLogger adapts logrus onto watermill's LoggerAdapter.
type watermillLogger struct {
	entry logrus.FieldLogger
}

func NewWatermillLogger(logger logrus.FieldLogger) watermill.LoggerAdapter {
	return &watermillLogger{entry: logger.WithField("component", "bus")}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

// Trace is folded into debug; watermill traces every message.
func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}
