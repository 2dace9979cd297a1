package logging

import (
	"io"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

var instance Logger
var once sync.Once

// GetLogger возвращает общий логгер приложения
func GetLogger() Logger {
	once.Do(func() {
		l := logrus.New()
		l.SetReportCaller(true)
		l.Formatter = &logrus.TextFormatter{
			CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
				filename := path.Base(frame.File)
				return frame.Function, filename
			},
			DisableColors: false,
			FullTimestamp: true,
		}

		err := os.MkdirAll("logs", 0770)
		if err != nil {
			l.Info("failed os.MkdirAll(logs), логи пишутся только в stdout")
			l.SetOutput(os.Stdout)
		} else {
			file, err := os.OpenFile("logs/all.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
			if err != nil {
				l.Info("failed os.OpenFile(logs/all.log), логи пишутся только в stdout")
				l.SetOutput(os.Stdout)
			} else {
				l.SetOutput(io.MultiWriter(file, os.Stdout))
			}
		}

		l.SetLevel(logrus.InfoLevel)

		instance = Logger{logrus.NewEntry(l)}
	})

	return instance
}

func (l Logger) SetLevelDebug() {
	l.Logger.SetLevel(logrus.DebugLevel)
}
