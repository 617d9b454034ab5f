//go:build js && wasm

// Command summarywidget-wasm registers the summary widget with the page.
//
// Build with:
//
//	GOOS=js GOARCH=wasm go build -o summarywidget.wasm ./cmd/summarywidget-wasm
package main

import (
	"github.com/kylesnowschwartz/summary-widget/internal/dom"
	"github.com/kylesnowschwartz/summary-widget/internal/logging"
)

const widgetName = "summarywidget"

func main() {
	dom.Register(widgetName, logging.New(logging.Config{Level: "warn"}))

	// Keep the runtime alive for the page's callbacks.
	select {}
}
