/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"os"
	"time"

	"github.com/apex/log"
	"github.com/getsentry/sentry-go"
	"github.com/lakshyashishir/appinventor-sources/cmd/odeuploadd/cmd"
)

func main() {
	if err := sentry.Init(sentryOptions(os.Getenv("SENTRY_DSN"))); err != nil {
		log.Errorf("sentry.Init failed: %s", err)
	}

	defer sentry.Flush(2 * time.Second)

	cmd.Execute()
}

// sentryOptions keeps every error event and samples only traces. An empty dsn leaves
// sentry disabled.
func sentryOptions(dsn string) sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              dsn,
		SampleRate:       1.0,
		EnableTracing:    true,
		TracesSampleRate: 0.1,
	}
}
