/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package diag collects the non-fatal diagnostics a build produces
// alongside its result, such as a file that failed to parse. These never
// abort a run; a Logger just gets to see them as they happen.
package diag

import (
	"fmt"
	"os"
	"sync"
)

// Logger receives non-fatal diagnostics surfaced during a build.
type Logger interface {
	Diagnosticf(format string, args ...any)
}

// StderrLogger writes each diagnostic to stderr, prefixed "warning: ".
type StderrLogger struct{}

func (StderrLogger) Diagnosticf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// discardLogger drops every diagnostic. Used where a caller has no
// interest in diagnostics (most tests).
type discardLogger struct{}

func (discardLogger) Diagnosticf(string, ...any) {}

// Discard is a Logger that drops everything it receives.
var Discard Logger = discardLogger{}

// Collector records diagnostics in memory instead of printing them,
// for callers that want to report diagnostics as structured data rather
// than stderr text.
type Collector struct {
	mu      sync.Mutex
	entries []string
}

func (c *Collector) Diagnosticf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, fmt.Sprintf(format, args...))
}

// Entries returns the diagnostics recorded so far, in the order received.
func (c *Collector) Entries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.entries))
	copy(out, c.entries)
	return out
}
