package google

import "sync"

// codeCell is the write-once slot shared between the callback goroutine and
// the polling orchestrator. The lock is held only for a single read or write.
type codeCell struct {
	mu   sync.Mutex
	code string
	set  bool
}

// Store records code if the cell is still empty and reports whether it did.
func (c *codeCell) Store(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set {
		return false
	}
	c.code = code
	c.set = true
	return true
}

// Load returns the captured code without clearing it.
func (c *codeCell) Load() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code, c.set
}
