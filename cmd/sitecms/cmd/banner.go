package cmd

import (
	"fmt"
)

const banner = `
      _ _
  ___(_) |_ ___  ___ _ __ ___  ___
 / __| | __/ _ \/ __| '_ ` + "`" + ` _ \/ __|
 \__ \ | ||  __/ (__| | | | | \__ \
 |___/_|\__\___|\___|_| |_| |_|___/

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Portfolio CMS - Version %s\x1b[0m\n\n", Version)
}
