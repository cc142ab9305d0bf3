// Package main provides a keyboard and mouse-button plugin for X11 hosts.
// It holds and releases inputs via xdotool.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string `json:"action"`
	Label  string `json:"label"`
	Params Params `json:"params"`
}

// Params names the key or button to act on.
type Params struct {
	Key    string `json:"key"`
	Button string `json:"button"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// keysyms maps injector key names to X keysyms where they differ.
var keysyms = map[string]string{
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"enter":     "Return",
	"return":    "Return",
	"esc":       "Escape",
	"escape":    "Escape",
	"tab":       "Tab",
	"backspace": "BackSpace",
	"shift":     "Shift_L",
	"ctrl":      "Control_L",
	"control":   "Control_L",
	"alt":       "Alt_L",
}

// buttons maps button names to X pointer button numbers.
var buttons = map[string]string{
	"left":   "1",
	"middle": "2",
	"right":  "3",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	args, err := buildArgs(req)
	if err != nil {
		writeResponse(err)
		return
	}

	writeResponse(runXdotool(args))
}

// buildArgs translates a request into xdotool arguments.
func buildArgs(req Request) ([]string, error) {
	switch req.Action {
	case "key_down", "key_up":
		if req.Params.Key == "" {
			return nil, fmt.Errorf("key is required")
		}
		verb := "keydown"
		if req.Action == "key_up" {
			verb = "keyup"
		}
		return []string{verb, keysym(req.Params.Key)}, nil

	case "mouse_down", "mouse_up":
		n, ok := buttons[req.Params.Button]
		if !ok {
			return nil, fmt.Errorf("unknown button %q", req.Params.Button)
		}
		verb := "mousedown"
		if req.Action == "mouse_up" {
			verb = "mouseup"
		}
		return []string{verb, n}, nil
	}

	return nil, fmt.Errorf("unknown action: %s", req.Action)
}

func keysym(key string) string {
	if sym, ok := keysyms[strings.ToLower(key)]; ok {
		return sym
	}
	return key
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runXdotool(args []string) error {
	output, err := exec.Command("xdotool", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
