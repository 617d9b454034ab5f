//go:build js && wasm

package dom

import (
	"log/slog"
	"strings"
	"syscall/js"

	"github.com/kylesnowschwartz/summary-widget/render"
	"github.com/kylesnowschwartz/summary-widget/stats"
)

// Register publishes the widget factory under name. When the page provides
// an HTMLWidgets runtime the factory is registered with it as an output
// widget; otherwise it is exposed as the global object name.factory.
func Register(name string, log *slog.Logger) {
	factory := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return errorValue("factory: missing element")
		}
		return newWidget(args[0], intArg(args, 1), intArg(args, 2), log.With("widget", name))
	})

	def := map[string]any{
		"name":    name,
		"type":    "output",
		"factory": factory,
	}

	if hw := js.Global().Get("HTMLWidgets"); hw.Truthy() {
		hw.Call("widget", def)
		log.Debug("registered with HTMLWidgets", "widget", name)
		return
	}
	js.Global().Set(name, def)
	log.Debug("registered as global", "widget", name)
}

// newWidget builds the hook object the page calls for one element.
func newWidget(el js.Value, width, height int, log *slog.Logger) js.Value {
	r := render.NewSummaryRenderer(NewElementSurface(el), render.WithLogger(log))
	r.Width, r.Height = width, height

	renderValue := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return errorValue("renderValue: missing input")
		}
		payload := js.Global().Get("JSON").Call("stringify", args[0]).String()

		in, err := stats.DecodeInput(strings.NewReader(payload))
		if err != nil {
			log.Error("render failed", "err", err)
			return errorValue(err.Error())
		}
		if err := r.Render(in); err != nil {
			log.Error("render failed", "err", err)
			return errorValue(err.Error())
		}
		return nil
	})

	resize := js.FuncOf(func(this js.Value, args []js.Value) any {
		r.Resize(intArg(args, 0), intArg(args, 1))
		return nil
	})

	return js.ValueOf(map[string]any{
		"renderValue": renderValue,
		"resize":      resize,
	})
}

// intArg returns args[i] as an int, or 0 when missing or not a number.
func intArg(args []js.Value, i int) int {
	if i >= len(args) || args[i].Type() != js.TypeNumber {
		return 0
	}
	return args[i].Int()
}

func errorValue(msg string) js.Value {
	return js.Global().Get("Error").New(msg)
}
