package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// EventFormatter writes one audit-style line per entry, each with its own
// event id.
type EventFormatter struct {
	SystemName string
}

func (f *EventFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("time=%s ", entry.Time.Format("2006-01-02T15:04:05Z07:00")))
	b.WriteString(fmt.Sprintf("source=%s ", f.SystemName))
	b.WriteString(fmt.Sprintf("level=%s ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("event_id=%s ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("msg=%q", entry.Message))

	for k, v := range entry.Data {
		b.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// New builds the service logger. When logDir is empty the logger writes to
// stderr only; otherwise entries also go to a size-rotated file.
func New(logDir string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&EventFormatter{SystemName: "hostelauth"})
	logger.SetLevel(logrus.InfoLevel)

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o700); err != nil {
			logger.WithField("error", err.Error()).Warn("could not create log directory; logging to stderr only")
			return logger
		}
		rotated := &lumberjack.Logger{
			Filename:   logDir + "/hostelauth.log",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, rotated))
	}

	return logger
}
