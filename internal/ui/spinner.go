package ui

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	spinnerChan chan bool
	spinnerDone sync.WaitGroup
	spinnerMu   sync.Mutex
)

func StartSpinnerWithColor(msg string, c ColorFn) {
	if c == nil {
		c = Colors.Normal
	}

	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	style := `⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏`
	frames := []rune(style)
	length := len(frames)

	stop := make(chan bool)
	spinnerChan = stop

	ticker := time.NewTicker(100 * time.Millisecond)

	spinnerDone.Add(1)
	go func() {
		defer spinnerDone.Done()

		pos := 0
		for {
			select {
			case <-stop:
				ticker.Stop()
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\r%s ... %s", c(msg), string(frames[pos%length]))
				pos += 1
			}
		}
	}()
}

// StopSpinner stops a running spinner and clears its line. Calling it
// without a running spinner is a no-op.
func StopSpinner() {
	spinnerMu.Lock()
	defer spinnerMu.Unlock()

	if spinnerChan == nil {
		return
	}

	close(spinnerChan)
	spinnerChan = nil
	spinnerDone.Wait()

	// Erase the spinner line so that command output starts on a clean line
	fmt.Fprint(os.Stderr, "\r\033[K")
}
