package results

// BrowserLog is the console output captured from one browser.
type BrowserLog struct {
	Name     string
	Messages []string
}

// LogBuffer accumulates browser console output for a run, keyed by browser ID.
type LogBuffer struct {
	logs  map[string]*BrowserLog
	order []string // Chronological order of first log per browser
}

// NewLogBuffer creates an empty log buffer.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{
		logs:  make(map[string]*BrowserLog),
		order: make([]string, 0),
	}
}

// Append adds a raw log line for browser.
func (b *LogBuffer) Append(browser BrowserInfo, line string) {
	log, exists := b.logs[browser.ID]
	if !exists {
		log = &BrowserLog{
			Name:     browser.Name,
			Messages: make([]string, 0),
		}
		b.logs[browser.ID] = log
		b.order = append(b.order, browser.ID)
	}
	log.Messages = append(log.Messages, line)
}

// Logs returns the captured logs in the order browsers first logged.
func (b *LogBuffer) Logs() []*BrowserLog {
	logs := make([]*BrowserLog, 0, len(b.order))
	for _, id := range b.order {
		logs = append(logs, b.logs[id])
	}
	return logs
}

// Len returns the number of browsers that logged something.
func (b *LogBuffer) Len() int {
	return len(b.order)
}

// BrowserError is a compilation or runtime error reported by a browser
// outside of any spec result.
type BrowserError struct {
	Browser BrowserInfo
	Error   string
}
