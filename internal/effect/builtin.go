package effect

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

var notifyValidKwargs = []string{"body", "appname", "title", "icon", "sound"}

// Print writes the args joined by single spaces, followed by the `end`
// kwarg or a newline.
func Print(_ context.Context, args []string, kwargs map[string]string, opts Options) error {
	end := "\n"
	if v, ok := kwargs["end"]; ok {
		end = v
	}
	if !opts.Silent {
		fmt.Fprint(opts.stdout(), strings.Join(args, " ")+end)
	}
	return checkKwargs("print", []string{"end"}, kwargs)
}

// Notify raises a desktop notification through the notify-send command.
// The body is the `body` kwarg or the args joined by spaces; `title`,
// `appname`, `icon` and `sound` map onto notify-send options. A send
// failure and a keyword argument failure are reported together.
func Notify(ctx context.Context, args []string, kwargs map[string]string, opts Options) error {
	var send string
	if !opts.Silent {
		if err := sendNotification(ctx, args, kwargs); err != nil {
			send = err.Error()
		}
	}

	var kw string
	if bad := unknownKwargKeys(notifyValidKwargs, kwargs); len(bad) > 0 {
		kw = invalidKwargsMessage("notify", notifyValidKwargs, bad)
	}

	switch {
	case send != "" && kw != "":
		return fmt.Errorf("%w: %s\n%s", ErrEffect, send, kw)
	case send != "":
		return fmt.Errorf("%w: %s", ErrEffect, send)
	case kw != "":
		return fmt.Errorf("%w: %s", ErrEffect, kw)
	}
	return nil
}

func sendNotification(ctx context.Context, args []string, kwargs map[string]string) error {
	body, ok := kwargs["body"]
	if !ok {
		body = strings.Join(args, " ")
	}

	argv := make([]string, 0, 8)
	if appname, ok := kwargs["appname"]; ok {
		argv = append(argv, "--app-name="+appname)
	}
	if icon, ok := kwargs["icon"]; ok {
		argv = append(argv, "--icon="+icon)
	}
	if sound, ok := kwargs["sound"]; ok {
		argv = append(argv, "--hint=string:sound-name:"+sound)
	}
	if title, ok := kwargs["title"]; ok {
		argv = append(argv, "--", title, body)
	} else {
		argv = append(argv, "--", body)
	}

	out, err := exec.CommandContext(ctx, "notify-send", argv...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("notify-send: %s", msg)
		}
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}

// Exec runs a user command. The first arg is the command line, split
// shell-style without evaluation; the remaining args are appended as
// arguments, or fed newline-joined on stdin with `stdin=join`.
func Exec(ctx context.Context, args []string, kwargs map[string]string, opts Options) error {
	if err := checkKwargs("exec", []string{"stdin"}, kwargs); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: exec: no command given", ErrEffect)
	}

	fields, err := shell.Fields(args[0], nil)
	if err != nil {
		return fmt.Errorf("%w: exec: %s", ErrEffect, err)
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: exec: no command given", ErrEffect)
	}

	argv := fields[1:]
	var stdin io.Reader
	switch mode := kwargs["stdin"]; mode {
	case "":
		argv = append(argv, args[1:]...)
	case "join":
		stdin = strings.NewReader(strings.Join(args[1:], "\n"))
	default:
		return fmt.Errorf("%w: exec: unsupported stdin mode `%s`", ErrEffect, mode)
	}

	if opts.Silent {
		return nil
	}

	cmd := exec.CommandContext(ctx, fields[0], argv...)
	cmd.Stdin = stdin
	cmd.Stdout = opts.stdout()
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: exec `%s`: %s", ErrEffect, fields[0], err)
	}
	return nil
}
