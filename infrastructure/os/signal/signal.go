package signal

import (
	"os"
	"os/signal"
	"syscall"
)

// interruptSignals defines the default signals to catch in order to do a
// proper shutdown.
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// ShutdownRequestChannel is used to initiate shutdown from one of the
// subsystems using the same code paths as when an interrupt signal is
// received.
var ShutdownRequestChannel = make(chan struct{})

// InterruptListener listens for OS Signals such as SIGINT (Ctrl+C) and
// shutdown requests from ShutdownRequestChannel. It returns a channel that
// is closed when either signal is received.
func InterruptListener() chan struct{} {
	r := make(chan struct{})

	spawn("signal.InterruptListener", func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, interruptSignals...)

		// Listen for the initial interrupt request. Signal the main
		// goroutine to perform the shutdown by closing the returned
		// channel.
		select {
		case sig := <-interruptChannel:
			log.Infof("Received signal (%s). Shutting down...", sig)

		case <-ShutdownRequestChannel:
			log.Infof("Shutdown requested. Shutting down...")
		}
		close(r)

		// Listen for any more shutdown requests and display a message so
		// the user knows the shutdown is in progress and the process is
		// not hung.
		for {
			select {
			case sig := <-interruptChannel:
				log.Infof("Received signal (%s). Already shutting down...", sig)

			case <-ShutdownRequestChannel:
				log.Infof("Shutdown requested. Already shutting down...")
			}
		}
	})

	return r
}
