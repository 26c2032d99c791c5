package display

import (
	"fmt"
	"os"

	"github.com/backmassage/stillcap/internal/logging"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if logging.Magenta != "" {
		fmt.Fprint(os.Stdout, "\033[1;95m")
	}
	fmt.Fprint(os.Stdout, ` ____   _    _  _  _
/ ___| | |_ (_)| || |  ___   __ _  _ __
\___ \ | __|| || || | / __| / _`+"`"+` || '_ \
 ___) || |_ | || || || (__ | (_| || |_) |
|____/  \__||_||_||_| \___| \__,_|| .__/
                                  |_|
`)
	if logging.Magenta != "" {
		fmt.Fprintln(os.Stdout, logging.NC)
	}
}
