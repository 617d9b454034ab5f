// Command summarywidget renders and serves summary statistic widgets.
package main

import (
	"os"

	"github.com/kylesnowschwartz/summary-widget/cmd/summarywidget/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
