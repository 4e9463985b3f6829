package main

import (
	"os"

	"exrates/internal/app"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := app.Run(os.Args[1:]); err != nil {
		logrus.WithError(err).Fatal("Application stopped with error")
	}
}
