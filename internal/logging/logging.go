package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New 创建结构化日志器：开发模式文本格式 Debug 级，
// 否则 JSON 格式 Info 级。所有错误路径都经由它输出，
// 不允许静默吞掉任何错误
func New(devMode bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if devMode {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
