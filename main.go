package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/wch1125/proviso-core/internal/handler"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.WithField("port", port).Info("ProViso core starting")
	if err := fasthttp.ListenAndServe(":"+port, handler.Route); err != nil {
		logrus.WithError(err).Fatal("server failed")
	}
}
