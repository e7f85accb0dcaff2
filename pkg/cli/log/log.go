/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package log prints colored console messages for the replica CLI
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

const debugEnvName = "REPLICA_DEBUG"

var (
	// ColorRed is a red foreground color
	ColorRed = color.New(color.FgRed)
	// ColorGreen is a green foreground color
	ColorGreen = color.New(color.FgGreen)
	// ColorYellow is a yellow foreground color
	ColorYellow = color.New(color.FgYellow)
	// ColorBlue is a blue foreground color
	ColorBlue = color.New(color.FgBlue)
	// ColorGray is a gray foreground color
	ColorGray = color.New(color.FgHiBlack)
)

const indent = "  "

var out io.Writer = color.Output

// SetOutput sets the destination of every message. A nil writer restores
// the default console output.
func SetOutput(w io.Writer) {
	if w == nil {
		w = color.Output
	}
	out = w
}

// symbolf writes an indented message led by a colored symbol
func symbolf(c *color.Color, symbol, msg string, v ...interface{}) {
	fmt.Fprintf(out, "%s%s %s", indent, c.Sprint(symbol), fmt.Sprintf(msg, v...))
}

// Info prints information
func Info(msg string) {
	symbolf(ColorBlue, "•", "%s", msg)
}

// Infof prints information with optional format verbs
func Infof(msg string, v ...interface{}) {
	symbolf(ColorBlue, "•", msg, v...)
}

// Success prints a success message
func Success(msg string) {
	symbolf(ColorGreen, "✔", "%s", msg)
}

// Successf prints a success message with optional format verbs
func Successf(msg string, v ...interface{}) {
	symbolf(ColorGreen, "✔", msg, v...)
}

// Warnf prints a warning
func Warnf(msg string, v ...interface{}) {
	symbolf(ColorYellow, "!", msg, v...)
}

// Errorf prints an error message with optional format verbs
func Errorf(msg string, v ...interface{}) {
	symbolf(ColorRed, "⨯", msg, v...)
}

// Printf prints a secondary message
func Printf(msg string, v ...interface{}) {
	symbolf(ColorGray, "•", msg, v...)
}

// Plainf prints an indented message without a leading symbol
func Plainf(msg string, v ...interface{}) {
	fmt.Fprintf(out, "%s%s", indent, fmt.Sprintf(msg, v...))
}

// Askf prints a question. Masked questions get a gray symbol.
func Askf(msg string, masked bool, v ...interface{}) {
	c := ColorGreen
	if masked {
		c = ColorGray
	}

	symbolf(c, "[?]", msg+": ", v...)
}

func isDebug() bool {
	return os.Getenv(debugEnvName) == "1"
}

// Debug prints a message only when REPLICA_DEBUG=1
func Debug(msg string, v ...interface{}) {
	if !isDebug() {
		return
	}

	fmt.Fprintf(out, "%s %s", ColorGray.Sprint("DEBUG:"), fmt.Sprintf(msg, v...))
}
