// Package dom embeds summary widgets in a web page when compiled to
// WebAssembly (GOOS=js GOARCH=wasm).
//
// Register publishes a widget factory the page calls with a DOM element;
// each factory call returns an object with renderValue and resize hooks
// backed by a SummaryRenderer writing into the element's innerText.
package dom
