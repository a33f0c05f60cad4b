package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/idilsaglam/itask/internal/app"
)

// Prompt returns a confirmer that asks on w and reads a y/N answer from r.
// Anything but y or yes, including EOF, declines.
func Prompt(r io.Reader, w io.Writer) app.Confirmer {
	br := bufio.NewReader(r)
	return func(prompt string) bool {
		fmt.Fprintf(w, "%s [y/N] ", prompt)
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
