package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

// L 进程日志，Init 之前只输出到 stdout，测试里直接可用
var L = newStdout()

var baseDir = "./logs"

func newStdout() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(textFormatter())
	return log
}

func textFormatter() *logrus.TextFormatter {
	return &logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			// 自定义显示格式：函数名 + 文件路径
			return f.Function, fmt.Sprintf("%s:%d", f.File, f.Line)
		},
	}
}

// Init 切换到按天切割的文件日志，同时保留 stdout
func Init(dir, level string) {
	if dir != "" {
		baseDir = dir
	}
	L = NewLogger("app")
	if lv, err := logrus.ParseLevel(level); err == nil {
		L.SetLevel(lv)
	}
}

// NewLogger 每种日志一个目录，保留 7 天
func NewLogger(logType string) *logrus.Logger {
	log := logrus.New()
	logPath := filepath.Join(baseDir, logType)
	_ = os.MkdirAll(logPath, 0755)

	writer, err := rotatelogs.New(
		logPath+"/"+logType+".log.%Y-%m-%d",
		rotatelogs.WithLinkName(logPath+"/"+logType+".log"),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		log.SetOutput(os.Stdout)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, writer))
	}
	log.SetFormatter(textFormatter())
	log.SetLevel(logrus.InfoLevel)
	return log
}
