package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/alternatefutures/akash-agent/interfaces"
)

// Stream discriminator bytes on raw shell frames.
const (
	frameStdout byte = 1
	frameStderr byte = 2
)

// shellMessage is the structured form of one inbound shell message.
type shellMessage struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"`
	ExitCode *int   `json:"exitCode,omitempty"`
}

// shellFrame is the tagged decode result of one inbound shell message:
// either a structured record, a raw frame with a recognized stream
// discriminator byte, or plain raw text.
type shellFrame struct {
	structured *shellMessage
	stream     byte
	raw        []byte
}

// parseShellFrame attempts the structured decode first, then inspects byte 0
// for a stream discriminator, and finally treats the whole frame as raw
// text. Each fallback is a first-class variant.
func parseShellFrame(data []byte) shellFrame {
	var msg shellMessage
	if err := json.Unmarshal(data, &msg); err == nil && msg.Type != "" {
		return shellFrame{structured: &msg}
	}
	if len(data) > 0 && (data[0] == frameStdout || data[0] == frameStderr) {
		return shellFrame{stream: data[0], raw: data[1:]}
	}
	return shellFrame{raw: data}
}

// Exec runs a command inside a lease's container over a duplex stream. The
// command string is always wrapped through `sh -c`, so shell metacharacters
// work; it is never executed as a raw argv. service disambiguates when the
// deployment runs more than one service.
//
// Accumulated output is returned with an `[Exit code: N]` suffix when the
// provider reported one. The idle timeout (measured from stream open) is
// longer than the log tail's because commands take time; on timeout partial
// output is returned, not an error.
func (c *Client) Exec(ctx context.Context, endpoint *url.URL, lease interfaces.LeaseID, service, command string, stdin, tty bool) (string, error) {
	q := url.Values{}
	q.Set("stdin", boolFlag(stdin))
	q.Set("tty", boolFlag(tty))
	q.Add("cmd", "sh")
	q.Add("cmd", "-c")
	q.Add("cmd", command)
	if service != "" {
		q.Set("service", service)
	}
	path := fmt.Sprintf("/lease/%d/%d/%d/shell?%s",
		lease.DSeq, lease.GSeq, lease.OSeq, q.Encode())

	conn, err := c.dialStream(ctx, endpoint, path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	c.log.Debug("Shell stream opened",
		slog.Uint64("dseq", lease.DSeq),
		slog.String("provider", lease.Provider.String()),
		slog.String("command", command))

	var output strings.Builder
	var exitCode *int
	done := make(chan struct{})
	defer close(done)
	events := readStream(conn, done)
	timeout := time.NewTimer(c.ExecTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-timeout.C:
			if output.Len() > 0 {
				return output.String(), nil
			}
			return fmt.Sprintf("Command timed out (%s)", c.ExecTimeout), nil

		case ev := <-events:
			if ev.err == nil {
				switch frame := parseShellFrame(ev.data); {
				case frame.structured != nil:
					switch frame.structured.Type {
					case "stdout", "stderr":
						output.WriteString(frame.structured.Data)
					case "result":
						exitCode = frame.structured.ExitCode
					case "error":
						data := frame.structured.Data
						if data == "" {
							data = "Unknown error"
						}
						output.WriteString("Error: " + data)
					}
				default:
					output.Write(frame.raw)
				}
				continue
			}

			// Recognized close codes describe a provider-side failure and win
			// over any buffered output.
			code := closeCode(ev.err)
			switch code {
			case closeInternalError:
				return "Error: Internal server error from provider", nil
			case closeLeaseNotFound:
				return "Error: Lease not found", nil
			case closeServiceNotFound:
				return `Error: Service not found. Specify the service name with the "service" parameter.`, nil
			case 0:
				return "", fmt.Errorf("stream failed: %w", ev.err)
			}

			result := output.String()
			if exitCode != nil {
				result += fmt.Sprintf("\n[Exit code: %d]", *exitCode)
			}
			if strings.TrimSpace(result) != "" {
				return result, nil
			}
			return fmt.Sprintf("Command completed (connection closed with code %d)", code), nil
		}
	}
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
