package utils

import (
	"fmt"
	"log"
	"os"
)

// NewLog opens <dir><name>.log in append mode. It falls back to stderr when
// the file cannot be created so a read-only workspace does not stop the server.
func NewLog(dir, name string) *log.Logger {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return StdLog(name)
	}
	fileName := fmt.Sprintf("%s%s.log", dir, name)
	file, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return StdLog(name)
	}
	return log.New(file, "", log.LstdFlags|log.Lmicroseconds)
}

func StdLog(name string) *log.Logger {
	return log.New(os.Stderr, fmt.Sprintf("[%s] ", name), log.LstdFlags|log.Lmicroseconds)
}
